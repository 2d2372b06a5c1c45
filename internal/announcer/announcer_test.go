package announcer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tazhate/birthdaybot/internal/domain"
)

type sentMessage struct {
	chatID   int64
	text     string
	imageURL string
	photo    bool
}

type fakeSender struct {
	sent    []sentMessage
	sendErr error
}

func (s *fakeSender) SendMessage(chatID int64, text string) error {
	s.sent = append(s.sent, sentMessage{chatID: chatID, text: text})
	return s.sendErr
}

func (s *fakeSender) SendPhoto(chatID int64, caption, imageURL string) error {
	s.sent = append(s.sent, sentMessage{chatID: chatID, text: caption, imageURL: imageURL, photo: true})
	return s.sendErr
}

type fakeImages struct {
	url   string
	err   error
	calls int
	query string
}

func (p *fakeImages) RandomImage(ctx context.Context, query string) (string, error) {
	p.calls++
	p.query = query
	return p.url, p.err
}

const chatID = int64(42)

func record(name string, birthYear int) domain.BirthdayRecord {
	return domain.BirthdayRecord{
		UserID:      name,
		DisplayName: name,
		BirthDate:   time.Date(birthYear, time.March, 15, 0, 0, 0, 0, time.UTC),
	}
}

var today = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

func TestAnnounceSingle(t *testing.T) {
	sender := &fakeSender{}
	images := &fakeImages{url: "https://tenor.example/cake.gif"}
	a := New(sender, images, chatID, zerolog.Nop())

	require.NoError(t, a.Announce([]domain.BirthdayRecord{record("Alice", 1990)}, today))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.True(t, msg.photo)
	assert.Equal(t, chatID, msg.chatID)
	assert.Equal(t, "https://tenor.example/cake.gif", msg.imageURL)
	assert.Contains(t, msg.text, "Alice")
	assert.Contains(t, msg.text, "34 years old")

	assert.Equal(t, 1, images.calls)
	assert.Equal(t, "birthday", images.query)
}

func TestAnnouncePair(t *testing.T) {
	sender := &fakeSender{}
	images := &fakeImages{url: "https://tenor.example/cake.gif"}
	a := New(sender, images, chatID, zerolog.Nop())

	records := []domain.BirthdayRecord{record("Alice", 1990), record("Bob", 2000)}
	require.NoError(t, a.Announce(records, today))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Contains(t, msg.text, "Alice")
	assert.Contains(t, msg.text, "34 years old")
	assert.Contains(t, msg.text, "Bob")
	assert.Contains(t, msg.text, "24 years old")
}

func TestAnnounceThreeOrMore(t *testing.T) {
	sender := &fakeSender{}
	images := &fakeImages{url: "https://tenor.example/cake.gif"}
	a := New(sender, images, chatID, zerolog.Nop())

	records := []domain.BirthdayRecord{
		record("Alice", 1990),
		record("Bob", 2000),
		record("Carol", 1975),
	}
	require.NoError(t, a.Announce(records, today))

	// One message per person, then a trailing image-only post.
	require.Len(t, sender.sent, 4)
	assert.Contains(t, sender.sent[0].text, "Alice")
	assert.Contains(t, sender.sent[1].text, "Bob")
	assert.Contains(t, sender.sent[2].text, "Carol")

	last := sender.sent[3]
	assert.True(t, last.photo)
	assert.Empty(t, last.text)

	assert.Equal(t, 1, images.calls)
}

func TestAnnounceDegradesWithoutImage(t *testing.T) {
	sender := &fakeSender{}
	images := &fakeImages{err: errors.New("tenor down")}
	a := New(sender, images, chatID, zerolog.Nop())

	require.NoError(t, a.Announce([]domain.BirthdayRecord{record("Alice", 1990)}, today))

	require.Len(t, sender.sent, 1)
	assert.False(t, sender.sent[0].photo)
	assert.Contains(t, sender.sent[0].text, "Alice")
}

func TestAnnounceManyDegradesWithoutTrailingImage(t *testing.T) {
	sender := &fakeSender{}
	images := &fakeImages{err: errors.New("tenor down")}
	a := New(sender, images, chatID, zerolog.Nop())

	records := []domain.BirthdayRecord{
		record("Alice", 1990),
		record("Bob", 2000),
		record("Carol", 1975),
	}
	require.NoError(t, a.Announce(records, today))
	assert.Len(t, sender.sent, 3)
}

func TestAnnounceEmptySet(t *testing.T) {
	sender := &fakeSender{}
	images := &fakeImages{url: "https://tenor.example/cake.gif"}
	a := New(sender, images, chatID, zerolog.Nop())

	require.NoError(t, a.Announce(nil, today))
	assert.Empty(t, sender.sent)
	assert.Zero(t, images.calls)
}

func TestAnnounceSendFailure(t *testing.T) {
	sender := &fakeSender{sendErr: errors.New("forbidden")}
	images := &fakeImages{url: "https://tenor.example/cake.gif"}
	a := New(sender, images, chatID, zerolog.Nop())

	err := a.Announce([]domain.BirthdayRecord{record("Alice", 1990)}, today)
	assert.Error(t, err)
}
