// Package normalize turns raw page signals into a complete MonthRecord.
package normalize

import (
	"fmt"
	"regexp"
	"time"

	"github.com/pfrederiksen/hijri-month/internal/hijri"
	"github.com/pfrederiksen/hijri-month/internal/lookup"
	"github.com/pfrederiksen/hijri-month/internal/scraper"
)

const (
	// FallbackYear is used when neither the page nor the seed edition names a year
	FallbackYear = "1447"
	// DefaultTotalDays is assumed when nothing says how long the month is.
	DefaultTotalDays = 29
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Normalizer builds MonthRecords. Apart from FetchedAt, which comes from Now,
// its output depends only on the extraction and the observation time.
type Normalizer struct {
	Tables   *lookup.Tables
	Location *time.Location
	Now      func() time.Time
}

// New creates a Normalizer computing civil dates in loc
func New(tables *lookup.Tables, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{
		Tables:   tables,
		Location: loc,
		Now:      time.Now,
	}
}

// Normalize builds the full month record for the month observed at observedAt.
// Missing fields fall back to the seed tables and then to fixed defaults.
func (n *Normalizer) Normalize(raw *scraper.RawExtraction, observedAt time.Time) (*hijri.MonthRecord, error) {
	if raw == nil {
		raw = &scraper.RawExtraction{}
	}
	today := hijri.CivilDate(observedAt, n.location())

	month, year := n.resolveMonth(raw)
	currentDay, fromPage := n.resolveCurrentDay(raw, month, today)
	totalDays := n.resolveTotalDays(raw, month)

	// The page saying it is day 30 is proof of a 30-day month. A seed-computed day
	// beyond the month end comes from a stale edition and is pinned to the last day.
	if fromPage && currentDay == 30 {
		totalDays = 30
	}
	if currentDay > totalDays {
		currentDay = totalDays
	}

	start := today.AddDate(0, 0, -(currentDay - 1))
	dates := make([]hijri.DayEntry, 0, totalDays)
	for day := 1; day <= totalDays; day++ {
		dates = append(dates, hijri.NewDayEntry(day, start.AddDate(0, 0, day-1)))
	}

	record := &hijri.MonthRecord{
		HijriMonth:      month,
		HijriYear:       year,
		MonthNameArabic: lookup.Arabic(month),
		CurrentDate:     hijri.FormatDisplay(today),
		CurrentHijriDay: currentDay,
		TotalDays:       totalDays,
		Dates:           dates,
		FetchedAt:       n.now().UTC(),
	}

	// Ordered by construction; a failure here is a bug, not bad input
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("normalizing %s: %w", month, err)
	}
	return record, nil
}

func (n *Normalizer) location() *time.Location {
	if n.Location == nil {
		return time.UTC
	}
	return n.Location
}

func (n *Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// resolveMonth canonicalizes the month heading and picks the year:
// the heading's own trailing year, then the year field, then the seed default.
func (n *Normalizer) resolveMonth(raw *scraper.RawExtraction) (month, year string) {
	month = hijri.UnknownMonth
	heading, ok := raw.HijriMonthRaw.Get()
	if ok {
		name, headingYear := scraper.SplitHeading(heading)
		if name != "" {
			month = lookup.Canonical(name)
		}
		year = headingYear
	}

	if y, ok := raw.HijriYearRaw.Get(); ok && year == "" && yearPattern.MatchString(y) {
		year = y
	}
	if year == "" && n.Tables != nil && n.Tables.DefaultYear != "" {
		year = n.Tables.DefaultYear
	}
	if year == "" {
		year = FallbackYear
	}
	return month, year
}

// resolveCurrentDay prefers the page's "today" marker, then the seed start date.
// fromPage is true only when the day was read from the page.
func (n *Normalizer) resolveCurrentDay(raw *scraper.RawExtraction, month string, today time.Time) (day int, fromPage bool) {
	if s, ok := raw.CurrentHijriDayRaw.Get(); ok {
		if day, ok := scraper.ParseDay(s); ok {
			return day, true
		}
	}

	if ms, ok := n.Tables.Start(month); ok {
		start := time.Date(ms.Start.Year(), ms.Start.Month(), ms.Start.Day(), 0, 0, 0, 0, n.location())
		if day := hijri.DaysBetween(start, today) + 1; day > 1 {
			return day, false
		}
	}

	return 1, false
}

// resolveTotalDays prefers a 30-day signal, then a 29-day signal, then the seed length
func (n *Normalizer) resolveTotalDays(raw *scraper.RawExtraction, month string) int {
	switch {
	case raw.HasDay30:
		return 30
	case raw.HasDay29:
		return 29
	}
	if ms, ok := n.Tables.Start(month); ok {
		return ms.Days
	}
	return DefaultTotalDays
}
