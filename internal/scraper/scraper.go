package scraper

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/hijri-month/internal/hijri"
	"github.com/pfrederiksen/hijri-month/internal/lookup"
)

const (
	CalendarURL = "https://www.acju.lk/calenders-en/"
	// ReadySelector marks a fully rendered calendar
	ReadySelector = "#calendar"
)

// RawExtraction holds the possibly partial fields read from one page snapshot
type RawExtraction struct {
	HijriMonthRaw      Signal[string] // month heading, may still carry the year
	HijriYearRaw       Signal[string]
	CurrentDateRaw     Signal[string] // Gregorian "today" as printed on the page
	CurrentHijriDayRaw Signal[string]
	HasDay30           bool
	HasDay29           bool
	DayLengthSource    string
}

// Probe is the cheap observation used for scheduling
type Probe struct {
	Day       int
	Month     string
	TotalDays int
}

// DefaultProbe is used when the probe fetch fails. Its unknown month never matches
// a stored record, so a failed probe leads to a fetch rather than a silent skip.
func DefaultProbe() Probe {
	return Probe{Day: 1, Month: hijri.UnknownMonth, TotalDays: 29}
}

// Extractor runs the strategy chain over page snapshots
type Extractor struct {
	strategies []Strategy
}

// NewExtractor creates an Extractor with the default strategy chain
func NewExtractor() *Extractor {
	return NewExtractorWithStrategies(DefaultStrategies()...)
}

// NewExtractorWithStrategies creates an Extractor trying strategies in the given order
func NewExtractorWithStrategies(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Extract parses an HTML snapshot and harvests every field it can
func (e *Extractor) Extract(r io.Reader) (*RawExtraction, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return e.ExtractDocument(doc), nil
}

// ExtractString is Extract for an in-memory snapshot
func (e *Extractor) ExtractString(html string) (*RawExtraction, error) {
	return e.Extract(strings.NewReader(html))
}

// ExtractDocument runs the strategies over an already parsed document
func (e *Extractor) ExtractDocument(doc *goquery.Document) *RawExtraction {
	raw := &RawExtraction{}
	var dayLength Signal[int]

	for _, s := range e.strategies {
		h := runStrategy(s, doc)

		raw.HijriMonthRaw.fill(h.MonthHeading, s.Name)
		if yearBelongsToMonth(h, raw.HijriMonthRaw) {
			raw.HijriYearRaw.fill(h.Year, s.Name)
		}
		raw.CurrentDateRaw.fill(h.CurrentDate, s.Name)
		raw.CurrentHijriDayRaw.fill(h.CurrentDay, s.Name)
		dayLength.fill(h.DayLength, s.Name)

		if raw.complete() && dayLength.Found {
			break
		}
	}

	if n, ok := dayLength.Get(); ok {
		raw.HasDay30 = n == 30
		raw.HasDay29 = n == 29
		raw.DayLengthSource = dayLength.Source
	}

	return raw
}

// yearBelongsToMonth reports whether a strategy's year may be paired with the
// winning month heading. A year harvested next to a different month title (an
// archive or navigation heading) is dropped.
func yearBelongsToMonth(h harvest, month Signal[string]) bool {
	if !h.MonthHeading.Found || !month.Found {
		return true
	}
	name, year := SplitHeading(h.MonthHeading.Value)
	winner, winnerYear := SplitHeading(month.Value)
	if lookup.Canonical(name) != lookup.Canonical(winner) {
		return false
	}
	return year == "" || winnerYear == "" || year == winnerYear
}

// runStrategy isolates the chain from a misbehaving strategy
func runStrategy(s Strategy, doc *goquery.Document) (h harvest) {
	defer func() {
		if r := recover(); r != nil {
			h = harvest{}
		}
	}()
	return s.Harvest(doc)
}

func (r *RawExtraction) complete() bool {
	return r.HijriMonthRaw.Found && r.HijriYearRaw.Found && r.CurrentDateRaw.Found && r.CurrentHijriDayRaw.Found
}

// Sources lists which strategy produced each field, for logging
func (r *RawExtraction) Sources() map[string]string {
	sources := make(map[string]string)
	add := func(field, source string) {
		if source != "" {
			sources[field] = source
		}
	}
	add("hijriMonth", r.HijriMonthRaw.Source)
	add("hijriYear", r.HijriYearRaw.Source)
	add("currentDate", r.CurrentDateRaw.Source)
	add("currentHijriDay", r.CurrentHijriDayRaw.Source)
	add("dayLength", r.DayLengthSource)
	return sources
}

// Probe derives the scheduling observation. It never consults the seed tables:
// a missing day is reported as 1 so that the scheduler treats it as a transition day.
func (r *RawExtraction) Probe() Probe {
	p := DefaultProbe()

	if heading, ok := r.HijriMonthRaw.Get(); ok {
		if name, _ := SplitHeading(heading); name != "" {
			p.Month = lookup.Canonical(name)
		}
	}
	if day, ok := ParseDay(r.CurrentHijriDayRaw.Value); r.CurrentHijriDayRaw.Found && ok {
		p.Day = day
	}
	if r.HasDay30 {
		p.TotalDays = 30
	}

	return p
}

// SplitHeading separates a month heading such as "Sha'baan 1447" into the month name
// and its trailing 4-digit year; year is empty when the heading carries none.
func SplitHeading(heading string) (name, year string) {
	heading = cleanText(heading)
	if m := yearSuffixed.FindStringSubmatch(heading); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	return heading, ""
}

// ParseDay parses a Hijri day number; only 1 through 30 are accepted
func ParseDay(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 30 {
		return 0, false
	}
	return n, true
}
