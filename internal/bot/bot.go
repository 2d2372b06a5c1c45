// Package bot is the Telegram side of the birthday bot: the long-polling
// update loop and the command router behind it.
package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/tazhate/birthdaybot/config"
)

type Bot struct {
	api    *tgbotapi.BotAPI
	router *Router
	log    zerolog.Logger
}

func New(cfg *config.Config, router *Router, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info().Str("username", api.Self.UserName).Msg("authorized")

	return &Bot{
		api:    api,
		router: router,
		log:    log.With().Str("component", "bot").Logger(),
	}, nil
}

// Start runs the update loop until ctx is cancelled. Messages are
// handled one at a time on this goroutine, so command flows never race
// each other; the registry's own lock covers the scheduler running
// beside us.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}

	b.router.HandleMessage(Message{
		ChatID:     msg.Chat.ID,
		AuthorID:   strconv.FormatInt(msg.From.ID, 10),
		AuthorName: displayName(msg.From),
		Text:       msg.Text,
	})
}

func displayName(from *tgbotapi.User) string {
	name := from.FirstName
	if from.LastName != "" {
		name += " " + from.LastName
	}
	if name == "" {
		name = from.UserName
	}
	return name
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendPhoto(chatID int64, caption, imageURL string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(imageURL))
	photo.Caption = caption
	photo.ParseMode = "HTML"
	_, err := b.api.Send(photo)
	return err
}
