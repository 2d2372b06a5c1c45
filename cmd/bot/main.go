package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/tazhate/birthdaybot/config"
	"github.com/tazhate/birthdaybot/internal/announcer"
	"github.com/tazhate/birthdaybot/internal/birthday"
	"github.com/tazhate/birthdaybot/internal/bot"
	"github.com/tazhate/birthdaybot/internal/calendar"
	"github.com/tazhate/birthdaybot/internal/clients/caldav"
	"github.com/tazhate/birthdaybot/internal/clients/tenor"
	"github.com/tazhate/birthdaybot/internal/registry"
	"github.com/tazhate/birthdaybot/internal/scheduler"
	"github.com/tazhate/birthdaybot/internal/storage"
)

func main() {
	// Missing .env is fine, config falls back to the process environment
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	store, err := newStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("init storage")
	}
	defer store.Close()

	reg, err := registry.Load(store)
	if err != nil {
		logger.Fatal().Err(err).Msg("load birthday records")
	}
	logger.Info().Int("records", reg.Len()).Msg("birthday records loaded")

	images := tenor.NewClient(cfg.TenorToken)

	router := bot.NewRouter(reg, newSyncer(cfg, logger), birthday.RealClock{}, cfg.PromptTimeout, logger)

	tgBot, err := bot.New(cfg, router, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init bot")
	}
	router.SetGateway(tgBot)

	ann := announcer.New(tgBot, images, cfg.AnnounceChatID, logger)
	sched := scheduler.New(cfg, reg, ann, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduler error")
		}
	}()

	go func() {
		if err := tgBot.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("bot error")
		}
	}()

	logger.Info().Msg("birthdaybot started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	cancel()
	sched.Stop()

	logger.Info().Msg("birthdaybot stopped")
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == config.BackendSQLite {
		return storage.NewSQLiteStore(cfg.DatabasePath)
	}
	return storage.NewFileStore(cfg.StoragePath)
}

// newSyncer returns nil when no calendar target is configured; the
// router treats that as "no mirroring".
func newSyncer(cfg *config.Config, logger zerolog.Logger) bot.Syncer {
	var publisher calendar.Publisher
	client := caldav.NewClient(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, cfg.CalDAVCalendar)
	if client.IsConfigured() {
		publisher = client
	}

	if cfg.ICSExportPath == "" && publisher == nil {
		return nil
	}
	return calendar.NewExporter(cfg.ICSExportPath, publisher, logger)
}
