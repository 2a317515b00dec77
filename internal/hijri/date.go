package hijri

import (
	"regexp"
	"strings"
	"time"
)

const (
	// GregorianLayout renders a DayEntry date, e.g. "October 18, 2026"
	GregorianLayout = "January 2, 2006"
	// DisplayLayout renders the current date, e.g. "Sunday, October 18, 2026"
	DisplayLayout = "Monday, January 2, 2006"
)

// FormatGregorian formats t as a DayEntry date
func FormatGregorian(t time.Time) string {
	return t.Format(GregorianLayout)
}

// FormatDisplay formats t as the record's current date
func FormatDisplay(t time.Time) string {
	return t.Format(DisplayLayout)
}

// CivilDate truncates t to midnight of its calendar date in loc
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween returns the number of calendar days from a to b
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// ParseMonth returns the Gregorian month for a full or abbreviated English name, or 0
func ParseMonth(name string) time.Month {
	name = strings.TrimSpace(name)
	for _, layout := range []string{"January", "Jan"} {
		if t, err := time.Parse(layout, name); err == nil {
			return t.Month()
		}
	}
	return 0
}

var (
	weekdayPrefix = regexp.MustCompile(`(?i)^(mon|tues|wednes|thurs|fri|satur|sun)day,?\s+`)
	ordinalSuffix = regexp.MustCompile(`(\d{1,2})(st|nd|rd|th)\b`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

// ParseGregorian attempts to parse a Gregorian date as shown on the calendar page.
// Returns time.Time{} (zero value) if parsing fails.
// Supports formats: "Sunday, October 18, 2026", "October 18, 2026", "18 October 2026",
// "Oct 18 2026", "18th October 2026", "2026-10-18"
func ParseGregorian(text string) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}
	}

	text = weekdayPrefix.ReplaceAllString(text, "")
	text = ordinalSuffix.ReplaceAllString(text, "$1")
	text = spaceRun.ReplaceAllString(text, " ")

	layouts := []string{
		"January 2, 2006",
		"January 2 2006",
		"Jan 2, 2006",
		"Jan 2 2006",
		"2 January 2006",
		"2 January, 2006",
		"2 Jan 2006",
		"2006-01-02",
		"02/01/2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}

	// Could not parse, return zero time
	return time.Time{}
}
