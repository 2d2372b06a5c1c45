// Package storage persists the full birthday record set. Backends are
// interchangeable: a JSON file (the bot's historical format) and SQLite.
package storage

// DateLayout is the serialized form of a birth date. It is kept
// compatible with the JSON files written by earlier versions of the bot.
const DateLayout = "2006, 01, 02"

// Record is the raw persisted form of one birthday registration. The
// BirthDate field uses DateLayout; parsing happens in the registry so
// both backends stay dumb.
type Record struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	BirthDate   string `json:"birth_date"`
}

// Store reads and writes the complete record set. Save replaces whatever
// was stored before, and Load returns records in the order they were
// saved. Writes are at-least-once per mutation; atomicity across crashes
// is not required.
type Store interface {
	Load() ([]Record, error)
	Save(records []Record) error
	Close() error
}
