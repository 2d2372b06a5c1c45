package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tazhate/birthdaybot/config"
	"github.com/tazhate/birthdaybot/internal/domain"
	"github.com/tazhate/birthdaybot/internal/registry"
	"github.com/tazhate/birthdaybot/internal/storage"
)

type memStore struct{}

func (memStore) Load() ([]storage.Record, error)  { return nil, nil }
func (memStore) Save(records []storage.Record) error { return nil }
func (memStore) Close() error                     { return nil }

type fakeAnnouncer struct {
	calls   int
	lastSet []domain.BirthdayRecord
	err     error
}

func (a *fakeAnnouncer) Announce(records []domain.BirthdayRecord, today time.Time) error {
	a.calls++
	a.lastSet = records
	return a.err
}

func newTestScheduler(t *testing.T, ann *fakeAnnouncer, records ...domain.BirthdayRecord) *Scheduler {
	t.Helper()

	reg, err := registry.Load(memStore{})
	require.NoError(t, err)
	for _, rec := range records {
		require.NoError(t, reg.Add(rec))
	}

	cfg := &config.Config{TriggerTime: "07:00:00", Timezone: time.UTC}
	return New(cfg, reg, ann, zerolog.Nop())
}

func birthRecord(id string, m time.Month, d int) domain.BirthdayRecord {
	return domain.BirthdayRecord{
		UserID:      id,
		DisplayName: id,
		BirthDate:   time.Date(1990, m, d, 0, 0, 0, 0, time.UTC),
	}
}

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestTickNoBirthdays(t *testing.T) {
	ann := &fakeAnnouncer{}
	s := newTestScheduler(t, ann, birthRecord("alice", time.March, 15))

	s.Tick(at(2024, time.June, 1, 7))
	assert.Zero(t, ann.calls)
}

func TestTickAnnouncesMatchSet(t *testing.T) {
	ann := &fakeAnnouncer{}
	s := newTestScheduler(t, ann,
		birthRecord("alice", time.March, 15),
		birthRecord("bob", time.March, 15),
		birthRecord("carol", time.June, 1),
	)

	s.Tick(at(2024, time.March, 15, 7))

	require.Equal(t, 1, ann.calls)
	require.Len(t, ann.lastSet, 2)
	assert.Equal(t, "alice", ann.lastSet[0].UserID)
	assert.Equal(t, "bob", ann.lastSet[1].UserID)
}

func TestTickIdempotentWithinDay(t *testing.T) {
	ann := &fakeAnnouncer{}
	s := newTestScheduler(t, ann, birthRecord("alice", time.March, 15))

	s.Tick(at(2024, time.March, 15, 7))
	s.Tick(at(2024, time.March, 15, 7))
	s.Tick(at(2024, time.March, 15, 12))

	assert.Equal(t, 1, ann.calls)
}

func TestTickFailedAnnouncementStaysLatched(t *testing.T) {
	ann := &fakeAnnouncer{err: errors.New("chat unreachable")}
	s := newTestScheduler(t, ann, birthRecord("alice", time.March, 15))

	s.Tick(at(2024, time.March, 15, 7))
	s.Tick(at(2024, time.March, 15, 7))

	// The day is marked handled independently of announcement success.
	assert.Equal(t, 1, ann.calls)
}

func TestTickResetsOnDateChange(t *testing.T) {
	ann := &fakeAnnouncer{}
	s := newTestScheduler(t, ann,
		birthRecord("alice", time.March, 15),
		birthRecord("bob", time.March, 16),
	)

	s.Tick(at(2024, time.March, 15, 7))
	s.Tick(at(2024, time.March, 16, 7))

	require.Equal(t, 2, ann.calls)
	require.Len(t, ann.lastSet, 1)
	assert.Equal(t, "bob", ann.lastSet[0].UserID)
}

func TestTickNextYearSameDate(t *testing.T) {
	ann := &fakeAnnouncer{}
	s := newTestScheduler(t, ann, birthRecord("alice", time.March, 15))

	s.Tick(at(2024, time.March, 15, 7))
	s.Tick(at(2025, time.March, 15, 7))

	assert.Equal(t, 2, ann.calls)
}
