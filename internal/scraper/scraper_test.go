package scraper

import (
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return string(data)
}

func TestExtract_StructuredPage(t *testing.T) {
	raw, err := NewExtractor().ExtractString(loadFixture(t, "calendar_structured.html"))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	checks := []struct {
		field      string
		signal     Signal[string]
		wantValue  string
		wantSource string
	}{
		{"month", raw.HijriMonthRaw, "Sha'baan 1447", StrategyStructured},
		{"year", raw.HijriYearRaw, "1447", StrategyHeading},
		{"current date", raw.CurrentDateRaw, "February 1, 2026", StrategyStructured},
		{"current day", raw.CurrentHijriDayRaw, "12", StrategyStructured},
	}
	for _, c := range checks {
		if !c.signal.Found {
			t.Errorf("%s not found", c.field)
			continue
		}
		if c.signal.Value != c.wantValue {
			t.Errorf("%s = %q, want %q", c.field, c.signal.Value, c.wantValue)
		}
		if c.signal.Source != c.wantSource {
			t.Errorf("%s source = %q, want %q", c.field, c.signal.Source, c.wantSource)
		}
	}

	if !raw.HasDay30 || raw.HasDay29 {
		t.Errorf("HasDay30/HasDay29 = %v/%v, want true/false", raw.HasDay30, raw.HasDay29)
	}
	if raw.DayLengthSource != StrategyStructured {
		t.Errorf("DayLengthSource = %q, want %q", raw.DayLengthSource, StrategyStructured)
	}
}

func TestExtract_HeadingPage(t *testing.T) {
	raw, err := NewExtractor().ExtractString(loadFixture(t, "calendar_headings.html"))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if got := raw.HijriMonthRaw.Or(""); got != "Rajab 1447" {
		t.Errorf("month = %q, want Rajab 1447", got)
	}
	if raw.HijriMonthRaw.Source != StrategyHeading {
		t.Errorf("month source = %q, want heading", raw.HijriMonthRaw.Source)
	}
	if got := raw.HijriYearRaw.Or(""); got != "1447" {
		t.Errorf("year = %q, want 1447", got)
	}
	if got := raw.CurrentDateRaw.Or(""); got != "Thursday, December 25, 2025" {
		t.Errorf("current date = %q", got)
	}
	if raw.CurrentHijriDayRaw.Found {
		t.Errorf("current day should be absent, got %q", raw.CurrentHijriDayRaw.Value)
	}
	if raw.HasDay30 || !raw.HasDay29 {
		t.Errorf("HasDay30/HasDay29 = %v/%v, want false/true", raw.HasDay30, raw.HasDay29)
	}
	if raw.DayLengthSource != StrategyText {
		t.Errorf("DayLengthSource = %q, want text", raw.DayLengthSource)
	}
}

func TestExtract_BarePage(t *testing.T) {
	raw, err := NewExtractor().ExtractString(loadFixture(t, "calendar_bare.html"))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if raw.HijriMonthRaw.Found || raw.HijriYearRaw.Found || raw.CurrentDateRaw.Found || raw.CurrentHijriDayRaw.Found {
		t.Errorf("bare page should yield no fields, got %+v", raw)
	}
	if raw.HasDay29 || raw.HasDay30 {
		t.Error("bare page should yield no day-length signal")
	}
	if len(raw.Sources()) != 0 {
		t.Errorf("Sources() = %v, want empty", raw.Sources())
	}
}

func TestExtract_EdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		checkFunc func(*testing.T, *RawExtraction)
	}{
		{
			name: "empty document",
			html: "",
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if raw.HijriMonthRaw.Found {
					t.Error("month should be absent")
				}
			},
		},
		{
			name: "empty month element falls through to heading",
			html: `<h1 id="hijri-month-name">  </h1><h1>Ramadaan 1447</h1>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if raw.HijriMonthRaw.Value != "Ramadaan 1447" || raw.HijriMonthRaw.Source != StrategyHeading {
					t.Errorf("month = %+v", raw.HijriMonthRaw)
				}
			},
		},
		{
			name: "heading without year",
			html: `<h1>Shawwal</h1>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if raw.HijriMonthRaw.Value != "Shawwal" {
					t.Errorf("month = %q, want Shawwal", raw.HijriMonthRaw.Value)
				}
				if raw.HijriYearRaw.Found {
					t.Error("year should be absent")
				}
			},
		},
		{
			name: "known month preferred over site title",
			html: `<h1>Calendar 2026</h1><h2>Dhul Hijjah 1447 AH</h2>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if raw.HijriMonthRaw.Value != "Dhul Hijjah 1447 AH" {
					t.Errorf("month = %q", raw.HijriMonthRaw.Value)
				}
				if raw.HijriYearRaw.Value != "1447" {
					t.Errorf("year = %q", raw.HijriYearRaw.Value)
				}
			},
		},
		{
			name: "year beside a different month title is dropped",
			html: `<h3>Muharram 1448</h3><div id="hijri-month-name">Sha'baan 1447</div>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if raw.HijriMonthRaw.Value != "Sha'baan 1447" || raw.HijriMonthRaw.Source != StrategyStructured {
					t.Errorf("month = %+v", raw.HijriMonthRaw)
				}
				if raw.HijriYearRaw.Found {
					t.Errorf("year = %+v, want absent", raw.HijriYearRaw)
				}
			},
		},
		{
			name: "heading of the same month supplies the year",
			html: `<div id="hijri-month-name">Shabaan</div><h2>Sha'baan 1447</h2>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if raw.HijriYearRaw.Value != "1447" || raw.HijriYearRaw.Source != StrategyHeading {
					t.Errorf("year = %+v, want 1447 from heading", raw.HijriYearRaw)
				}
			},
		},
		{
			name: "same month with a different year is dropped",
			html: `<div id="hijri-month-name">Sha'baan 1447</div><h2>Sha'baan 1446</h2>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if raw.HijriYearRaw.Found {
					t.Errorf("year = %+v, want absent", raw.HijriYearRaw)
				}
			},
		},
		{
			name: "unrecognized year-suffixed h1 used as last resort",
			html: `<h1>Rajjab 1447</h1>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if raw.HijriMonthRaw.Value != "Rajjab 1447" {
					t.Errorf("month = %q", raw.HijriMonthRaw.Value)
				}
			},
		},
		{
			name: "today marker without hijri day",
			html: `<div id="today" data-date="2026-02-20"></div>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if raw.CurrentHijriDayRaw.Found {
					t.Error("current day should be absent")
				}
				if raw.CurrentDateRaw.Value != "2026-02-20" {
					t.Errorf("current date = %q", raw.CurrentDateRaw.Value)
				}
			},
		},
		{
			name: "calendar data-days attribute",
			html: `<div id="calendar" data-days="29"><span class="hijri-date">1</span></div>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if !raw.HasDay29 || raw.HasDay30 {
					t.Errorf("HasDay29/HasDay30 = %v/%v", raw.HasDay29, raw.HasDay30)
				}
			},
		},
		{
			name: "30 token in body text",
			html: `<p>28Feb17 29Feb18 30Feb19</p>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if !raw.HasDay30 {
					t.Error("HasDay30 should be set")
				}
			},
		},
		{
			name: "30 inside a longer number is not a day",
			html: `<p>Call 0112330Jan12 for details</p>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if raw.HasDay30 {
					t.Error("HasDay30 should not be set")
				}
			},
		},
		{
			name: "today in body text",
			html: `<div>Today: Friday, March 20, 2026 | Ramadaan</div>`,
			checkFunc: func(t *testing.T, raw *RawExtraction) {
				if raw.CurrentDateRaw.Value != "Friday, March 20, 2026" || raw.CurrentDateRaw.Source != StrategyText {
					t.Errorf("current date = %+v", raw.CurrentDateRaw)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := NewExtractor().ExtractString(tt.html)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			tt.checkFunc(t, raw)
		})
	}
}

func TestExtract_StrategyPanicIsContained(t *testing.T) {
	boom := Strategy{
		Name: "boom",
		Harvest: func(doc *goquery.Document) harvest {
			panic("unexpected layout")
		},
	}
	e := NewExtractorWithStrategies(boom, Strategy{Name: StrategyHeading, Harvest: harvestHeadings})

	raw, err := e.ExtractString(`<h1>Safar 1448</h1>`)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if raw.HijriMonthRaw.Value != "Safar 1448" {
		t.Errorf("month = %q, want Safar 1448", raw.HijriMonthRaw.Value)
	}
}

func TestExtract_ShortCircuitsPerField(t *testing.T) {
	var calls []string
	record := func(name string, h harvest) Strategy {
		return Strategy{Name: name, Harvest: func(*goquery.Document) harvest {
			calls = append(calls, name)
			return h
		}}
	}

	full := harvest{
		MonthHeading: Found("Rajab 1447"),
		Year:         Found("1447"),
		CurrentDate:  Found("December 25, 2025"),
		CurrentDay:   Found("3"),
		DayLength:    Found(29),
	}
	e := NewExtractorWithStrategies(
		record("first", full),
		record("second", harvest{MonthHeading: Found("Sha'baan 1447")}),
	)

	raw, err := e.ExtractString("<html></html>")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if raw.HijriMonthRaw.Value != "Rajab 1447" {
		t.Errorf("month = %q, first strategy should win", raw.HijriMonthRaw.Value)
	}
	if strings.Join(calls, ",") != "first" {
		t.Errorf("strategies called = %v, want only first", calls)
	}
}

func TestRawExtraction_Probe(t *testing.T) {
	tests := []struct {
		name string
		raw  *RawExtraction
		want Probe
	}{
		{
			name: "all signals present",
			raw: &RawExtraction{
				HijriMonthRaw:      Found("Shabaan 1447"),
				CurrentHijriDayRaw: Found("29"),
				HasDay30:           true,
			},
			want: Probe{Day: 29, Month: "Sha'baan", TotalDays: 30},
		},
		{
			name: "nothing found",
			raw:  &RawExtraction{},
			want: DefaultProbe(),
		},
		{
			name: "unparsable day",
			raw: &RawExtraction{
				HijriMonthRaw:      Found("Rajab 1447"),
				CurrentHijriDayRaw: Found("twelve"),
			},
			want: Probe{Day: 1, Month: "Rajab", TotalDays: 29},
		},
		{
			name: "unknown month passes through",
			raw: &RawExtraction{
				HijriMonthRaw:      Found("Rajjab"),
				CurrentHijriDayRaw: Found("15"),
			},
			want: Probe{Day: 15, Month: "Rajjab", TotalDays: 29},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.raw.Probe(); got != tt.want {
				t.Errorf("Probe() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSplitHeading(t *testing.T) {
	tests := []struct {
		heading  string
		wantName string
		wantYear string
	}{
		{"Rajab 1447", "Rajab", "1447"},
		{"  Sha'baan   1447 ", "Sha'baan", "1447"},
		{"Dhul Qa'dah 1447 AH", "Dhul Qa'dah", "1447"},
		{"Ramadaan", "Ramadaan", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			name, year := SplitHeading(tt.heading)
			if name != tt.wantName || year != tt.wantYear {
				t.Errorf("SplitHeading(%q) = %q, %q; want %q, %q", tt.heading, name, year, tt.wantName, tt.wantYear)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"1", 1, true},
		{" 30 ", 30, true},
		{"0", 0, false},
		{"31", 0, false},
		{"-2", 0, false},
		{"", 0, false},
		{"12th", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDay(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseDay(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSignal(t *testing.T) {
	var s Signal[string]
	if s.Or("fallback") != "fallback" {
		t.Error("absent signal should return fallback")
	}
	if !s.fill(Found("x"), "a") {
		t.Error("fill into absent signal should succeed")
	}
	if s.fill(Found("y"), "b") {
		t.Error("fill into present signal should be refused")
	}
	if v, ok := s.Get(); !ok || v != "x" || s.Source != "a" {
		t.Errorf("signal = %+v", s)
	}
	if Absent[int]().Found {
		t.Error("Absent() should not be found")
	}
}
