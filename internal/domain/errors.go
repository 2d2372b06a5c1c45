package domain

import "errors"

var (
	// ErrNotFound is returned when no record exists for a user.
	ErrNotFound = errors.New("record not found")

	// ErrNoRecords is returned when an operation needs at least one
	// registered birthday and there are none.
	ErrNoRecords = errors.New("no birthday records")

	// ErrCorruptState is returned when the persisted record set cannot be
	// read back. It is fatal at startup.
	ErrCorruptState = errors.New("corrupt persisted state")
)
