package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/emersion/go-ical"
	"github.com/rs/zerolog"
	"github.com/tazhate/birthdaybot/internal/domain"
)

// Publisher pushes one calendar object to a remote collection.
type Publisher interface {
	PublishEvent(ctx context.Context, uid string, cal *ical.Calendar) error
}

// Exporter rewrites the .ics file and republishes remote events after
// every registry mutation. Either target may be absent.
type Exporter struct {
	path      string
	publisher Publisher
	log       zerolog.Logger
}

func NewExporter(path string, publisher Publisher, log zerolog.Logger) *Exporter {
	return &Exporter{
		path:      path,
		publisher: publisher,
		log:       log.With().Str("component", "calendar").Logger(),
	}
}

// Sync mirrors records to the configured targets. The file is rewritten
// whole; remote events are PUT per record, keyed by a stable UID so
// updates replace rather than duplicate.
func (e *Exporter) Sync(records []domain.BirthdayRecord) error {
	now := time.Now()

	if e.path != "" {
		if err := e.writeFile(records, now); err != nil {
			return err
		}
		e.log.Debug().Int("records", len(records)).Str("path", e.path).Msg("ics file written")
	}

	if e.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		for _, rec := range records {
			cal := Wrap(BuildEvent(rec, now))
			if err := e.publisher.PublishEvent(ctx, EventUID(rec), cal); err != nil {
				return fmt.Errorf("publish event for %s: %w", rec.UserID, err)
			}
		}
		e.log.Debug().Int("records", len(records)).Msg("caldav events published")
	}

	return nil
}

func (e *Exporter) writeFile(records []domain.BirthdayRecord, now time.Time) error {
	if len(records) == 0 {
		if err := os.WriteFile(e.path, []byte(stubCalendar), 0644); err != nil {
			return fmt.Errorf("write %s: %w", e.path, err)
		}
		return nil
	}

	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", e.path, err)
	}

	if err := ical.NewEncoder(f).Encode(Build(records, now)); err != nil {
		f.Close()
		return fmt.Errorf("encode calendar: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", e.path, err)
	}
	return nil
}
