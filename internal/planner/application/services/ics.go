package services

import (
	"strings"
	"time"

	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// icsLayout is the iCalendar UTC timestamp format.
const icsLayout = "20060102T150405Z"

// eventPalette is the deterministic event color rotation.
var eventPalette = []string{"#6EE7B7", "#93C5FD", "#FCD34D", "#FCA5A5", "#C4B5FD", "#F9A8D4"}

// EncodeICS serializes the plan's focus sessions to an iCalendar document
// with CRLF line endings. Break sessions are not exported. Output is
// byte-for-byte deterministic for a given plan.
func EncodeICS(plan *domain.PlanRecord) string {
	var b strings.Builder
	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:-//StudyFlow//Planner 1.0//VI")
	writeLine("CALSCALE:GREGORIAN")

	dtstamp := icsTime(plan.GeneratedAt)
	for _, s := range plan.Sessions {
		if s.IsBreak() {
			continue
		}
		description := "Complete session"
		if len(s.SuccessCriteria) > 0 {
			description = strings.Join(s.SuccessCriteria, " • ")
		}

		writeLine("BEGIN:VEVENT")
		writeLine("UID:" + s.ID + "@studyflow")
		writeLine("DTSTAMP:" + dtstamp)
		writeLine("DTSTART:" + icsTime(s.PlannedStart))
		writeLine("DTEND:" + icsTime(s.PlannedEnd))
		writeLine("SUMMARY:" + s.Subject + " · " + s.Title)
		writeLine("DESCRIPTION:" + description)
		writeLine("CATEGORIES:" + s.Subject)
		writeLine("COLOR:" + SubjectColor(s.Subject))
		writeLine("END:VEVENT")
	}

	writeLine("END:VCALENDAR")
	return b.String()
}

// SubjectColor picks the palette entry for a subject by codepoint sum.
func SubjectColor(subject string) string {
	sum := 0
	for _, r := range subject {
		sum += int(r)
	}
	if sum < 0 {
		sum = -sum
	}
	return eventPalette[sum%len(eventPalette)]
}

func icsTime(t domain.ISOTime) string {
	return t.Time().In(time.UTC).Format(icsLayout)
}
