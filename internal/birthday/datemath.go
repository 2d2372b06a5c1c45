// Package birthday holds the pure calendar arithmetic behind the bot:
// projecting a birth date onto its next occurrence, computing ages and
// finding whose birthday comes up next.
package birthday

import (
	"fmt"
	"time"
)

// DateOf strips the time-of-day and location from t, leaving the calendar
// date at midnight UTC. All date comparisons in this package operate on
// values normalized this way.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextOccurrence returns the next calendar date on which birth's month and
// day recur strictly after ref. A birthday falling exactly on ref's date
// counts as already passed, so it resolves to next year.
func NextOccurrence(birth, ref time.Time) time.Time {
	refDate := DateOf(ref)
	occ := time.Date(refDate.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	if !occ.After(refDate) {
		occ = time.Date(refDate.Year()+1, birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	}
	return occ
}

// AgeInYears is the plain difference between calendar years. It does not
// adjust for whether the birthday has happened yet in asOf's year, which
// over-counts by one before the day itself. That matches what the bot has
// always reported, and the announcement path only calls it on the
// birthday itself where both definitions agree.
func AgeInYears(birth, asOf time.Time) int {
	return asOf.Year() - birth.Year()
}

// FallsOn reports whether birth's month and day land on date.
func FallsOn(birth, date time.Time) bool {
	return birth.Month() == date.Month() && birth.Day() == date.Day()
}

// OrdinalSuffix returns the English ordinal suffix for a day of month:
// 1 -> "st", 2 -> "nd", 3 -> "rd", 4 -> "th". Days 11 to 13 take "th"
// regardless of their last digit.
func OrdinalSuffix(day int) string {
	if day%100/10 == 1 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FormatDayMonth renders a date the way the bot talks about birthdays,
// e.g. "5th of March".
func FormatDayMonth(t time.Time) string {
	return fmt.Sprintf("%d%s of %s", t.Day(), OrdinalSuffix(t.Day()), t.Month().String())
}
