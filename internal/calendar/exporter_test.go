package calendar

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tazhate/birthdaybot/internal/domain"
)

type fakePublisher struct {
	uids []string
}

func (p *fakePublisher) PublishEvent(ctx context.Context, uid string, cal *ical.Calendar) error {
	p.uids = append(p.uids, uid)
	return nil
}

func TestSyncWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "birthdays.ics")
	e := NewExporter(path, nil, zerolog.Nop())

	require.NoError(t, e.Sync([]domain.BirthdayRecord{
		record("1", "Alice", 1990, time.March, 15),
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Alice")
	assert.Contains(t, string(data), "BEGIN:VEVENT")
}

func TestSyncEmptySetWritesStub(t *testing.T) {
	path := filepath.Join(t.TempDir(), "birthdays.ics")
	e := NewExporter(path, nil, zerolog.Nop())

	require.NoError(t, e.Sync(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "BEGIN:VCALENDAR")
	assert.NotContains(t, string(data), "BEGIN:VEVENT")
}

func TestSyncPublishesPerRecord(t *testing.T) {
	publisher := &fakePublisher{}
	e := NewExporter("", publisher, zerolog.Nop())

	require.NoError(t, e.Sync([]domain.BirthdayRecord{
		record("1", "Alice", 1990, time.March, 15),
		record("2", "Bob", 1985, time.December, 31),
	}))

	assert.Equal(t, []string{"1@birthdaybot", "2@birthdaybot"}, publisher.uids)
}
