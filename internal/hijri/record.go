package hijri

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRecord is wrapped by every MonthRecord validation failure.
var ErrInvalidRecord = errors.New("invalid month record")

// UnknownMonth is the month name used when no month could be observed.
const UnknownMonth = "Unknown"

// MonthRecord represents the current Hijri month as published by the calendar source
type MonthRecord struct {
	HijriMonth      string     `json:"hijriMonth"`
	HijriYear       string     `json:"hijriYear"`
	MonthNameArabic string     `json:"monthNameArabic"`
	CurrentDate     string     `json:"currentDate"` // local calendar date at fetch time
	CurrentHijriDay int        `json:"currentHijriDay"`
	TotalDays       int        `json:"totalDays"`
	Dates           []DayEntry `json:"dates"`
	FetchedAt       time.Time  `json:"fetchedAt"`
}

// DayEntry represents one day of the Hijri month and its Gregorian date
type DayEntry struct {
	HijriDay       int    `json:"hijriDay"`
	GregorianDate  string `json:"gregorianDate"`
	GregorianMonth string `json:"gregorianMonth"`
	GregorianDay   int    `json:"gregorianDay"`
	GregorianYear  int    `json:"gregorianYear"`
}

// DaySnapshot is the single-day view of the calendar.
// HijriDay is a string so that an unknown day can be published as "".
type DaySnapshot struct {
	HijriDay      string    `json:"hijriDay"`
	HijriMonth    string    `json:"hijriMonth"`
	GregorianDate string    `json:"gregorianDate"`
	FetchedAt     time.Time `json:"fetchedAt"`
}

// NewDayEntry creates the entry for hijriDay falling on the civil date of t
func NewDayEntry(hijriDay int, t time.Time) DayEntry {
	return DayEntry{
		HijriDay:       hijriDay,
		GregorianDate:  FormatGregorian(t),
		GregorianMonth: t.Month().String(),
		GregorianDay:   t.Day(),
		GregorianYear:  t.Year(),
	}
}

// Date returns the Gregorian date of the entry at midnight in loc
func (d DayEntry) Date(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	month := ParseMonth(d.GregorianMonth)
	if month == 0 {
		return time.Time{}
	}
	return time.Date(d.GregorianYear, month, d.GregorianDay, 0, 0, 0, 0, loc)
}

// IsValidLength reports whether n is a possible Hijri month length
func IsValidLength(n int) bool {
	return n == 29 || n == 30
}

// Validate checks the record invariants: 29 or 30 days, a current day inside the month,
// and one entry per day in ascending order with consecutive Gregorian dates.
func (r *MonthRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if r.HijriMonth == "" {
		return fmt.Errorf("%w: empty month name", ErrInvalidRecord)
	}
	if !IsValidLength(r.TotalDays) {
		return fmt.Errorf("%w: totalDays %d not 29 or 30", ErrInvalidRecord, r.TotalDays)
	}
	if r.CurrentHijriDay < 1 || r.CurrentHijriDay > r.TotalDays {
		return fmt.Errorf("%w: currentHijriDay %d outside [1, %d]", ErrInvalidRecord, r.CurrentHijriDay, r.TotalDays)
	}
	if len(r.Dates) != r.TotalDays {
		return fmt.Errorf("%w: %d dates for a %d-day month", ErrInvalidRecord, len(r.Dates), r.TotalDays)
	}

	var prev time.Time
	for i, d := range r.Dates {
		if d.HijriDay != i+1 {
			return fmt.Errorf("%w: dates[%d] has hijriDay %d", ErrInvalidRecord, i, d.HijriDay)
		}
		date := d.Date(time.UTC)
		if date.IsZero() {
			return fmt.Errorf("%w: dates[%d] has unknown month %q", ErrInvalidRecord, i, d.GregorianMonth)
		}
		if i > 0 && !date.Equal(prev.AddDate(0, 0, 1)) {
			return fmt.Errorf("%w: dates[%d] (%s) does not follow %s", ErrInvalidRecord, i, d.GregorianDate, FormatGregorian(prev))
		}
		prev = date
	}

	return nil
}

// Entry returns the entry for a Hijri day, or false if the month has no such day
func (r *MonthRecord) Entry(hijriDay int) (DayEntry, bool) {
	if hijriDay < 1 || hijriDay > len(r.Dates) {
		return DayEntry{}, false
	}
	return r.Dates[hijriDay-1], true
}

// EntryFor returns the entry whose Gregorian date is the civil date of t
func (r *MonthRecord) EntryFor(t time.Time) (DayEntry, bool) {
	for _, d := range r.Dates {
		if d.GregorianYear == t.Year() && d.GregorianMonth == t.Month().String() && d.GregorianDay == t.Day() {
			return d, true
		}
	}
	return DayEntry{}, false
}

// Snapshot builds the single-day view for the civil date of t.
// When t falls outside the month the Hijri day is left empty.
func (r *MonthRecord) Snapshot(t time.Time) *DaySnapshot {
	snap := &DaySnapshot{
		HijriMonth:    r.HijriMonth,
		GregorianDate: FormatDisplay(t),
		FetchedAt:     r.FetchedAt,
	}
	if entry, ok := r.EntryFor(t); ok {
		snap.HijriDay = fmt.Sprintf("%d", entry.HijriDay)
	}
	return snap
}
