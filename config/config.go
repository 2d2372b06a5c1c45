package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	TelegramToken  string
	TenorToken     string
	AnnounceChatID int64
	TriggerTime    string // "HH:MM:SS", wall clock in Timezone
	Timezone       *time.Location
	StorageBackend string
	StoragePath    string
	DatabasePath   string
	PromptTimeout  time.Duration

	// Optional calendar mirroring
	ICSExportPath  string
	CalDAVURL      string
	CalDAVUsername string
	CalDAVPassword string
	CalDAVCalendar string
}

func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	tenorToken := os.Getenv("TENOR_TOKEN")
	if tenorToken == "" {
		return nil, fmt.Errorf("TENOR_TOKEN is required")
	}

	chatID, err := strconv.ParseInt(os.Getenv("ANNOUNCE_CHAT_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ANNOUNCE_CHAT_ID is required and must be a number")
	}

	triggerTime := os.Getenv("TRIGGER_TIME")
	if triggerTime == "" {
		triggerTime = "07:00:00"
	}
	if _, err := time.Parse("15:04:05", triggerTime); err != nil {
		return nil, fmt.Errorf("invalid TRIGGER_TIME %q: %w", triggerTime, err)
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "Local"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		backend = BackendJSON
	}
	if backend != BackendJSON && backend != BackendSQLite {
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q", BackendJSON, BackendSQLite)
	}

	storagePath := os.Getenv("STORAGE_PATH")
	if storagePath == "" {
		storagePath = "./data/birthdays.json"
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/birthdaybot.db"
	}

	promptTimeout := 120 * time.Second
	if v := os.Getenv("PROMPT_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("PROMPT_TIMEOUT must be a positive number of seconds")
		}
		promptTimeout = time.Duration(secs) * time.Second
	}

	return &Config{
		TelegramToken:  token,
		TenorToken:     tenorToken,
		AnnounceChatID: chatID,
		TriggerTime:    triggerTime,
		Timezone:       tz,
		StorageBackend: backend,
		StoragePath:    storagePath,
		DatabasePath:   dbPath,
		PromptTimeout:  promptTimeout,
		ICSExportPath:  os.Getenv("ICS_EXPORT_PATH"),
		CalDAVURL:      os.Getenv("CALDAV_URL"),
		CalDAVUsername: os.Getenv("CALDAV_USERNAME"),
		CalDAVPassword: os.Getenv("CALDAV_PASSWORD"),
		CalDAVCalendar: os.Getenv("CALDAV_CALENDAR"),
	}, nil
}
