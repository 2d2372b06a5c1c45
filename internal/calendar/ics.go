// Package calendar mirrors the registered birthdays to iCalendar form:
// an .ics file on disk and, when configured, a CalDAV collection.
package calendar

import (
	"time"

	"github.com/emersion/go-ical"
	"github.com/tazhate/birthdaybot/internal/domain"
)

const prodID = "-//birthdaybot//EN"

// stubCalendar keeps the export a valid VCALENDAR when no birthdays are
// registered.
const stubCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + prodID + "\r\nEND:VCALENDAR\r\n"

// BuildEvent returns a yearly-recurring all-day event for one birthday.
func BuildEvent(rec domain.BirthdayRecord, now time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, EventUID(rec))
	event.Props.SetText(ical.PropSummary, "🎂 "+rec.DisplayName)
	event.Props.SetDate(ical.PropDateTimeStart, rec.BirthDate)
	event.Props.SetText(ical.PropRecurrenceRule, "FREQ=YEARLY")
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	return event
}

// Build returns a calendar holding one event per record.
func Build(records []domain.BirthdayRecord, now time.Time) *ical.Calendar {
	cal := newCalendar()
	for _, rec := range records {
		cal.Children = append(cal.Children, BuildEvent(rec, now).Component)
	}
	return cal
}

// Wrap puts a single event into its own calendar, the form CalDAV
// expects for one calendar object.
func Wrap(event *ical.Event) *ical.Calendar {
	cal := newCalendar()
	cal.Children = append(cal.Children, event.Component)
	return cal
}

// EventUID is stable per user so republishing replaces instead of
// duplicating.
func EventUID(rec domain.BirthdayRecord) string {
	return rec.UserID + "@birthdaybot"
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)
	return cal
}
