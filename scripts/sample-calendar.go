package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/hijri-month/internal/calendar"
	"github.com/pfrederiksen/hijri-month/internal/hijri"
	"github.com/pfrederiksen/hijri-month/internal/lookup"
)

var (
	month    = flag.String("month", "Rajab", "Hijri month to render from the seed table")
	seedFile = flag.String("seed-file", "", "Seed file (default: built-in edition)")
	output   = flag.String("out", "sample-month.ics", "Output file")
)

func main() {
	flag.Parse()

	tables, err := lookup.Load(*seedFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading seed: %v\n", err)
		os.Exit(1)
	}

	start, ok := tables.Start(*month)
	if !ok {
		fmt.Fprintf(os.Stderr, "No seed start for %q\n", *month)
		os.Exit(1)
	}

	name := lookup.Canonical(*month)
	record := &hijri.MonthRecord{
		HijriMonth:      name,
		HijriYear:       tables.DefaultYear,
		MonthNameArabic: lookup.Arabic(name),
		CurrentDate:     hijri.FormatDisplay(start.Start),
		CurrentHijriDay: 1,
		TotalDays:       start.Days,
		FetchedAt:       time.Now().UTC(),
	}
	for day := 1; day <= start.Days; day++ {
		record.Dates = append(record.Dates, hijri.NewDayEntry(day, start.Start.AddDate(0, 0, day-1)))
	}
	if err := record.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Seed month is not a valid record: %v\n", err)
		os.Exit(1)
	}

	ics := calendar.GenerateICS(record, record.FetchedAt)
	if err := os.WriteFile(*output, []byte(ics), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s with %d days: %s\n\n", calendar.CalendarName(record), record.TotalDays, *output)
	fmt.Println("Import it into Google Calendar, Apple Calendar, or Outlook to check the rendering.")
}
