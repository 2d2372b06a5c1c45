// Package scheduler fires the birthday announcement once per day at the
// configured wall-clock time.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/tazhate/birthdaybot/config"
	"github.com/tazhate/birthdaybot/internal/birthday"
	"github.com/tazhate/birthdaybot/internal/domain"
	"github.com/tazhate/birthdaybot/internal/registry"
)

// Announcer posts the celebration for a day's match-set.
type Announcer interface {
	Announce(records []domain.BirthdayRecord, today time.Time) error
}

// Per-day announcement phases. The day starts idle, arms when a non-empty
// match-set is computed and latches to announced before the announcement
// is attempted, so a failed send never repeats within the same day.
type phase int

const (
	phaseIdle phase = iota
	phaseArmed
	phaseAnnounced
)

type Scheduler struct {
	cron      *cron.Cron
	cfg       *config.Config
	registry  *registry.Registry
	announcer Announcer
	log       zerolog.Logger

	mu      sync.Mutex
	day     time.Time // date the state below belongs to
	phase   phase
	matched []domain.BirthdayRecord
}

func New(cfg *config.Config, reg *registry.Registry, announcer Announcer, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.Timezone))

	return &Scheduler{
		cron:      c,
		cfg:       cfg,
		registry:  reg,
		announcer: announcer,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	trigger, err := time.Parse("15:04:05", s.cfg.TriggerTime)
	if err != nil {
		return fmt.Errorf("parse trigger time: %w", err)
	}

	spec := fmt.Sprintf("%d %d %d * * *", trigger.Second(), trigger.Minute(), trigger.Hour())
	if _, err := s.cron.AddFunc(spec, func() {
		s.Tick(time.Now().In(s.cfg.Timezone))
	}); err != nil {
		return fmt.Errorf("add birthday check: %w", err)
	}

	s.cron.Start()
	s.log.Info().
		Str("trigger_time", s.cfg.TriggerTime).
		Str("timezone", s.cfg.Timezone.String()).
		Msg("scheduler started")

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

// Tick evaluates the match-set for now's date and announces it at most
// once per calendar day. Calling it again on the same date is a no-op
// whether or not the announcement succeeded; the state resets when the
// date changes. Records deleted after the announcement are not
// retroactively un-announced.
func (s *Scheduler) Tick(now time.Time) {
	s.mu.Lock()

	today := birthday.DateOf(now)
	if !today.Equal(s.day) {
		s.day = today
		s.phase = phaseIdle
		s.matched = nil
	}

	if s.phase == phaseIdle {
		var matched []domain.BirthdayRecord
		for _, rec := range s.registry.All() {
			if birthday.FallsOn(rec.BirthDate, today) {
				matched = append(matched, rec)
			}
		}
		if len(matched) == 0 {
			s.mu.Unlock()
			return
		}
		s.matched = matched
		s.phase = phaseArmed
	}

	if s.phase != phaseArmed {
		s.mu.Unlock()
		return
	}

	// Latch before announcing: the day counts as handled even if the
	// announcement fails, which keeps re-evaluation from double-posting.
	s.phase = phaseAnnounced
	matched := s.matched
	s.mu.Unlock()

	s.log.Info().Int("matched", len(matched)).Msg("announcing birthdays")
	if err := s.announcer.Announce(matched, today); err != nil {
		s.log.Error().Err(err).Msg("birthday announcement failed")
	}
}
