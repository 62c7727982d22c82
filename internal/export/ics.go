package export

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

// CalendarEvent is one VEVENT to be rendered into an iCalendar file.
type CalendarEvent struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time

	// Alarm adds a VALARM display reminder 15 minutes before Start.
	Alarm bool
}

const icsStampLayout = "20060102T150405"

// GenerateICS renders events as an iCalendar document. Timestamps are
// floating local time and lines end with CRLF per RFC 5545.
func GenerateICS(events []CalendarEvent, now time.Time) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//PocketNetwork//Relationship Manager//EN")
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	for _, ev := range events {
		line("BEGIN:VEVENT")
		line("UID:" + uuid.NewString() + "@pocketnetwork.app")
		line("DTSTAMP:" + now.Format(icsStampLayout))
		line("DTSTART:" + ev.Start.Format(icsStampLayout))
		line("DTEND:" + ev.End.Format(icsStampLayout))
		line("SUMMARY:" + escapeICS(ev.Title))
		if ev.Description != "" {
			line("DESCRIPTION:" + escapeICS(ev.Description))
		}
		if ev.Location != "" {
			line("LOCATION:" + escapeICS(ev.Location))
		}
		if ev.Alarm {
			line("BEGIN:VALARM")
			line("TRIGGER:-PT15M")
			line("ACTION:DISPLAY")
			line("DESCRIPTION:" + escapeICS(ev.Title))
			line("END:VALARM")
		}
		line("END:VEVENT")
	}
	line("END:VCALENDAR")
	return b.String()
}

// escapeICS escapes TEXT values per RFC 5545 §3.3.11.
func escapeICS(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}

// FollowUpEvent schedules a follow-up as a 30-minute block at 09:00
// local time on its due date, with a reminder alarm.
func FollowUpEvent(f models.FollowUp, personName string) CalendarEvent {
	y, m, d := f.DueDate.Date()
	start := time.Date(y, m, d, 9, 0, 0, 0, f.DueDate.Location())
	return CalendarEvent{
		Title:       "Follow up: " + personName,
		Description: f.Description,
		Start:       start,
		End:         start.Add(30 * time.Minute),
		Alarm:       true,
	}
}

// EventEntry renders an event at its actual time as a two-hour block,
// without an alarm.
func EventEntry(e models.Event) CalendarEvent {
	return CalendarEvent{
		Title:       e.Name,
		Description: e.Notes,
		Location:    e.Location,
		Start:       e.Date,
		End:         e.Date.Add(2 * time.Hour),
	}
}
