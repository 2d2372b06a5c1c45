package domain

import "time"

// BirthdayRecord associates a chat user with their date of birth.
type BirthdayRecord struct {
	// UserID is the stable platform identifier and the only lookup key.
	UserID string
	// DisplayName is captured at registration time and is not refreshed
	// afterwards, even if the user renames themselves.
	DisplayName string
	// BirthDate is a calendar date at midnight UTC. The year is kept so
	// ages can be computed; recurrence only looks at month and day.
	BirthDate time.Time
}
