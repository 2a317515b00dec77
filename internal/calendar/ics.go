// Package calendar renders a month record as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/hijri-month/internal/hijri"
)

const (
	ProdID     = "-//hijri-month//hijri-month//EN"
	uidDomain  = "hijri-month"
	dateLayout = "20060102"
	// maxLineOctets is the RFC 5545 content line limit, excluding CRLF
	maxLineOctets = 75
)

// GenerateICS renders one all-day event per day of the month.
// stamp becomes the DTSTAMP of every event.
func GenerateICS(record *hijri.MonthRecord, stamp time.Time) string {
	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:"+ProdID)
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	writeLine(&ics, "X-WR-CALNAME:"+escapeICS(CalendarName(record)))

	for _, day := range record.Dates {
		writeEvent(&ics, record, day, stamp)
	}

	writeLine(&ics, "END:VCALENDAR")
	return ics.String()
}

// CalendarName is the feed title, e.g. "Sha'baan 1447"
func CalendarName(record *hijri.MonthRecord) string {
	return fmt.Sprintf("%s %s", record.HijriMonth, record.HijriYear)
}

func writeEvent(ics *strings.Builder, record *hijri.MonthRecord, day hijri.DayEntry, stamp time.Time) {
	date := day.Date(time.UTC)
	if date.IsZero() {
		return
	}

	writeLine(ics, "BEGIN:VEVENT")
	writeLine(ics, fmt.Sprintf("UID:%s@%s", eventID(record, day.HijriDay), uidDomain))
	writeLine(ics, "DTSTAMP:"+formatICSTime(stamp))
	writeLine(ics, "DTSTART;VALUE=DATE:"+date.Format(dateLayout))
	writeLine(ics, "DTEND;VALUE=DATE:"+date.AddDate(0, 0, 1).Format(dateLayout))
	writeLine(ics, "SUMMARY:"+escapeICS(fmt.Sprintf("%d %s %s", day.HijriDay, record.HijriMonth, record.HijriYear)))

	description := fmt.Sprintf("%d %s %s AH\n%s", day.HijriDay, record.MonthNameArabic, record.HijriYear, day.GregorianDate)
	if day.HijriDay == record.TotalDays {
		description += fmt.Sprintf("\nLast day of a %d-day month", record.TotalDays)
	}
	writeLine(ics, "DESCRIPTION:"+escapeICS(description))

	writeLine(ics, "STATUS:CONFIRMED")
	writeLine(ics, "TRANSP:TRANSPARENT")
	writeLine(ics, "END:VEVENT")
}

// eventID is stable across re-fetches of the same month, so updated feeds replace
// earlier events instead of duplicating them.
func eventID(record *hijri.MonthRecord, hijriDay int) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, record.HijriMonth)
	return fmt.Sprintf("%s-%s-%02d", record.HijriYear, slug, hijriDay)
}

// writeLine folds a content line at 75 octets without splitting UTF-8 sequences
func writeLine(ics *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		// continuation lines lose one octet to the leading space
		limit = maxLineOctets - 1
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
