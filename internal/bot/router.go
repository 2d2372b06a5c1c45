package bot

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tazhate/birthdaybot/internal/birthday"
	"github.com/tazhate/birthdaybot/internal/domain"
	"github.com/tazhate/birthdaybot/internal/registry"
)

// Message is one incoming chat message, already detached from the
// platform.
type Message struct {
	ChatID     int64
	AuthorID   string
	AuthorName string
	Text       string
}

// Gateway is the outbound side the router answers through.
type Gateway interface {
	SendMessage(chatID int64, text string) error
}

// Syncer mirrors the record set to an external calendar after mutations.
type Syncer interface {
	Sync(records []domain.BirthdayRecord) error
}

const dateInputLayout = "02/01/2006"

type promptKey struct {
	chatID int64
	userID string
}

type pendingPrompt struct {
	timer *time.Timer
}

// Router maps command messages onto the registry and renders every
// outcome, including failures, back as a chat message. Commands are
// matched case-insensitively on the first token; anything that is not a
// known command is ignored.
//
// The !add flow is conversational: the router suspends a single-shot
// continuation per (chat, author) and consumes that author's next
// message in the chat as the date input. The continuation expires after
// promptTimeout.
type Router struct {
	gateway  Gateway
	registry *registry.Registry
	syncer   Syncer // optional
	clock    birthday.Clock
	timeout  time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	pending map[promptKey]*pendingPrompt
}

func NewRouter(reg *registry.Registry, syncer Syncer, clock birthday.Clock, promptTimeout time.Duration, log zerolog.Logger) *Router {
	return &Router{
		registry: reg,
		syncer:   syncer,
		clock:    clock,
		timeout:  promptTimeout,
		log:      log.With().Str("component", "router").Logger(),
		pending:  make(map[promptKey]*pendingPrompt),
	}
}

// SetGateway wires the outbound side; the gateway and router reference
// each other, so this runs after both exist.
func (r *Router) SetGateway(gateway Gateway) {
	r.gateway = gateway
}

func (r *Router) HandleMessage(msg Message) {
	if r.consumePrompt(msg) {
		return
	}

	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return
	}

	switch cmd := strings.ToLower(fields[0]); {
	case strings.HasPrefix(cmd, "!add"):
		r.cmdAdd(msg)
	case strings.HasPrefix(cmd, "!next"):
		r.cmdNext(msg)
	case strings.HasPrefix(cmd, "!delete"):
		r.cmdDelete(msg)
	case strings.HasPrefix(cmd, "!help"):
		r.cmdHelp(msg)
	}
}

// consumePrompt feeds msg to a suspended !add flow if its author has one
// in this chat. The flow is single-shot: whatever the author says next
// is the date input.
func (r *Router) consumePrompt(msg Message) bool {
	key := promptKey{chatID: msg.ChatID, userID: msg.AuthorID}

	r.mu.Lock()
	prompt, ok := r.pending[key]
	if ok {
		prompt.timer.Stop()
		delete(r.pending, key)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.finishAdd(msg)
	return true
}

func (r *Router) cmdAdd(msg Message) {
	key := promptKey{chatID: msg.ChatID, userID: msg.AuthorID}

	r.mu.Lock()
	if old, ok := r.pending[key]; ok {
		old.timer.Stop()
	}
	r.pending[key] = &pendingPrompt{
		timer: time.AfterFunc(r.timeout, func() { r.expirePrompt(key) }),
	}
	r.mu.Unlock()

	r.reply(msg, "What is your birthday in the format DD/MM/YYYY?")
}

func (r *Router) expirePrompt(key promptKey) {
	r.mu.Lock()
	_, ok := r.pending[key]
	delete(r.pending, key)
	r.mu.Unlock()

	if ok {
		r.send(key.chatID, "I didn't get a birthday in time — please start again with !add.")
	}
}

func (r *Router) finishAdd(msg Message) {
	input := strings.TrimSpace(msg.Text)
	birth, err := time.Parse(dateInputLayout, input)
	if err != nil {
		r.reply(msg, "An error occurred, are you sure you entered your birthday in the correct format (DD/MM/YYYY)? Please start the process again with !add.")
		return
	}

	rec := domain.BirthdayRecord{
		UserID:      msg.AuthorID,
		DisplayName: msg.AuthorName,
		BirthDate:   birthday.DateOf(birth),
	}
	if err := r.registry.Add(rec); err != nil {
		r.log.Error().Err(err).Str("user_id", msg.AuthorID).Msg("add record")
		r.reply(msg, "Something went wrong saving your birthday, please try again with !add.")
		return
	}

	r.reply(msg, fmt.Sprintf("Thanks <b>%s</b>, you entered %s, this has been added to the birthday bot!", msg.AuthorName, input))
	r.syncCalendar()
}

func (r *Router) cmdDelete(msg Message) {
	err := r.registry.Remove(msg.AuthorID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.reply(msg, "You are not registered in the birthday bot, so there is nothing to delete!")
	case err != nil:
		r.log.Error().Err(err).Str("user_id", msg.AuthorID).Msg("remove record")
		r.reply(msg, "Something went wrong removing your birthday, please try again.")
	default:
		r.reply(msg, fmt.Sprintf("Congratulations <b>%s</b>, you have been deleted!", msg.AuthorName))
		r.syncCalendar()
	}
}

func (r *Router) cmdNext(msg Message) {
	next, err := birthday.ResolveNext(r.registry.All(), r.clock.Now())
	if err != nil {
		r.reply(msg, "There doesn't appear to be any users in the system, please check that at least one user has added their birthday.")
		return
	}

	when := birthday.FormatDayMonth(next.Date)

	if len(next.Records) == 1 {
		r.reply(msg, fmt.Sprintf("The next birthday is <b>%s</b> on %s!", next.Records[0].DisplayName, when))
		return
	}

	names := make([]string, len(next.Records))
	for i, rec := range next.Records {
		names[i] = "<b>" + rec.DisplayName + "</b>"
	}
	var who string
	if len(names) == 2 {
		who = names[0] + " and " + names[1] + " both"
	} else {
		who = strings.Join(names, ", ") + " all"
	}
	r.reply(msg, fmt.Sprintf("The next birthday is a busy one! %s have their birthdays on %s!", who, when))
}

func (r *Router) cmdHelp(msg Message) {
	r.reply(msg, fmt.Sprintf("Hello <b>%s</b>, you can add your own birthday by typing !add, and check who has the next birthday by typing !next. You can also use !delete to remove yourself from the list. Hope this helps! 🙂", msg.AuthorName))
}

func (r *Router) syncCalendar() {
	if r.syncer == nil {
		return
	}
	if err := r.syncer.Sync(r.registry.All()); err != nil {
		r.log.Warn().Err(err).Msg("calendar sync failed")
	}
}

func (r *Router) reply(msg Message, text string) {
	r.send(msg.ChatID, text)
}

func (r *Router) send(chatID int64, text string) {
	if err := r.gateway.SendMessage(chatID, text); err != nil {
		r.log.Error().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}
