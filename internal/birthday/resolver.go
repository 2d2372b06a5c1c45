package birthday

import (
	"time"

	"github.com/tazhate/birthdaybot/internal/domain"
)

// NextBirthdays is the soonest upcoming birthday date and everyone who
// celebrates on it.
type NextBirthdays struct {
	Date    time.Time
	Records []domain.BirthdayRecord
}

// ResolveNext finds the minimum NextOccurrence across records and returns
// every record sharing that date, preserving the order of the input
// (registration order for records coming out of the registry). Birth
// years may differ between tied records.
//
// An empty record set resolves to domain.ErrNoRecords.
func ResolveNext(records []domain.BirthdayRecord, ref time.Time) (NextBirthdays, error) {
	if len(records) == 0 {
		return NextBirthdays{}, domain.ErrNoRecords
	}

	var next NextBirthdays
	for _, rec := range records {
		occ := NextOccurrence(rec.BirthDate, ref)
		switch {
		case next.Records == nil || occ.Before(next.Date):
			next = NextBirthdays{Date: occ, Records: []domain.BirthdayRecord{rec}}
		case occ.Equal(next.Date):
			next.Records = append(next.Records, rec)
		}
	}
	return next, nil
}
