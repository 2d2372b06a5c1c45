// Package announcer formats and posts the daily birthday celebration.
package announcer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tazhate/birthdaybot/internal/birthday"
	"github.com/tazhate/birthdaybot/internal/domain"
)

// Sender is the outbound half of the chat gateway used for
// announcements.
type Sender interface {
	SendMessage(chatID int64, text string) error
	SendPhoto(chatID int64, caption, imageURL string) error
}

// ImageProvider returns a random celebratory image URL for a query.
type ImageProvider interface {
	RandomImage(ctx context.Context, query string) (string, error)
}

const imageQuery = "birthday"

// Announcer posts celebration messages to a fixed chat. Message shape
// depends on how many people share the day: one person gets a photo with
// a caption, two share a combined message, three or more get one message
// each followed by an image-only post.
type Announcer struct {
	sender Sender
	images ImageProvider
	chatID int64
	log    zerolog.Logger
}

func New(sender Sender, images ImageProvider, chatID int64, log zerolog.Logger) *Announcer {
	return &Announcer{
		sender: sender,
		images: images,
		chatID: chatID,
		log:    log.With().Str("component", "announcer").Logger(),
	}
}

// Announce posts the celebration for everyone in records, which must all
// have their birthday on today. Exactly one image is fetched per
// invocation; if the fetch fails the announcement still goes out, just
// without the image.
func (a *Announcer) Announce(records []domain.BirthdayRecord, today time.Time) error {
	if len(records) == 0 {
		return nil
	}

	imageURL := a.fetchImage()

	switch len(records) {
	case 1:
		rec := records[0]
		text := fmt.Sprintf("🥳 It is <b>%s</b>'s birthday today and they are %d years old! Happy birthday! 🥳",
			rec.DisplayName, birthday.AgeInYears(rec.BirthDate, today))
		return a.send(text, imageURL)
	case 2:
		first, second := records[0], records[1]
		text := fmt.Sprintf("It is <b>%s</b>'s birthday and they are %d years old, and <b>%s</b>'s birthday and they are %d years old! Happy birthday to you both! 🥳",
			first.DisplayName, birthday.AgeInYears(first.BirthDate, today),
			second.DisplayName, birthday.AgeInYears(second.BirthDate, today))
		return a.send(text, imageURL)
	default:
		for _, rec := range records {
			text := fmt.Sprintf("It is <b>%s</b>'s birthday today and they are %d years old!",
				rec.DisplayName, birthday.AgeInYears(rec.BirthDate, today))
			if err := a.sender.SendMessage(a.chatID, text); err != nil {
				return fmt.Errorf("send birthday message: %w", err)
			}
		}
		if imageURL == "" {
			return nil
		}
		if err := a.sender.SendPhoto(a.chatID, "", imageURL); err != nil {
			return fmt.Errorf("send birthday image: %w", err)
		}
		return nil
	}
}

// fetchImage returns a URL or "" when the provider fails; the caller
// degrades to a text-only announcement.
func (a *Announcer) fetchImage() string {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url, err := a.images.RandomImage(ctx, imageQuery)
	if err != nil {
		a.log.Warn().Err(err).Msg("image fetch failed, announcing text-only")
		return ""
	}
	return url
}

func (a *Announcer) send(text, imageURL string) error {
	if imageURL == "" {
		if err := a.sender.SendMessage(a.chatID, text); err != nil {
			return fmt.Errorf("send birthday message: %w", err)
		}
		return nil
	}
	if err := a.sender.SendPhoto(a.chatID, text, imageURL); err != nil {
		return fmt.Errorf("send birthday image: %w", err)
	}
	return nil
}
