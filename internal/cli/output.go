package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pfrederiksen/hijri-month/internal/hijri"
	"github.com/pfrederiksen/hijri-month/internal/orchestrator"
	"github.com/pfrederiksen/hijri-month/internal/schedule"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output after a check
type OutputResult struct {
	CheckedAt       time.Time          `json:"checked_at"`
	Action          string             `json:"action"`
	Branch          string             `json:"branch"`
	Reason          string             `json:"reason"`
	Fetched         bool               `json:"fetched"`
	ProbeFailed     bool               `json:"probe_failed,omitempty"`
	ObservedDay     int                `json:"observed_day"`
	ObservedMonth   string             `json:"observed_month"`
	StoredMonth     string             `json:"stored_month,omitempty"`
	StoredDay       int                `json:"stored_day,omitempty"`
	HoursSinceFetch *float64           `json:"hours_since_fetch,omitempty"`
	Record          *hijri.MonthRecord `json:"record,omitempty"`
	Today           *hijri.DaySnapshot `json:"today,omitempty"`
	Sources         map[string]string  `json:"sources,omitempty"`
	Warnings        []string           `json:"warnings,omitempty"`
}

// NewOutputResult flattens an orchestrator result for output
func NewOutputResult(res *orchestrator.Result, checkedAt time.Time) *OutputResult {
	d := res.Decision
	out := &OutputResult{
		CheckedAt:     checkedAt,
		Action:        string(d.Action),
		Branch:        string(d.Branch),
		Reason:        d.Reason,
		Fetched:       res.Fetched,
		ProbeFailed:   res.ProbeFailed,
		ObservedDay:   d.Observed.Day,
		ObservedMonth: d.Observed.Month,
		StoredMonth:   d.StoredMonth,
		StoredDay:     d.StoredDay,
		Record:        res.Record,
		Today:         res.Day,
		Sources:       res.Sources,
		Warnings:      res.Warnings,
	}
	if d.HoursSinceFetch >= 0 {
		h := d.HoursSinceFetch
		out.HoursSinceFetch = &h
	}
	return out
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs any value as indented JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs a check result as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}

	if result.Fetched && result.Record != nil {
		r := result.Record
		fmt.Fprintf(w, "Fetched %s %s: day %d of %d (%s)\n", r.HijriMonth, r.HijriYear, r.CurrentHijriDay, r.TotalDays, result.Branch)
		fmt.Fprintf(w, "  %s to %s\n", r.Dates[0].GregorianDate, r.Dates[len(r.Dates)-1].GregorianDate)
	} else {
		fmt.Fprintf(w, "Skipped fetch: %s (%s)\n", result.Reason, result.Branch)
		if result.Record != nil {
			fmt.Fprintf(w, "  Stored: %s %s, %d days\n", result.Record.HijriMonth, result.Record.HijriYear, result.Record.TotalDays)
		}
	}

	if result.Today != nil && result.Today.HijriDay != "" {
		fmt.Fprintf(w, "Today: %s %s (%s)\n", result.Today.HijriDay, result.Today.HijriMonth, result.Today.GregorianDate)
	}

	if verbose {
		fmt.Fprintf(w, "\nObserved: day %d of %s\n", result.ObservedDay, result.ObservedMonth)
		if result.StoredMonth != "" {
			fmt.Fprintf(w, "Stored:   day %d of %s\n", result.StoredDay, result.StoredMonth)
		}
		if result.HoursSinceFetch != nil {
			fmt.Fprintf(w, "Last fetch: %.1f hours ago\n", *result.HoursSinceFetch)
		}
		if len(result.Sources) > 0 {
			fields := make([]string, 0, len(result.Sources))
			for field := range result.Sources {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			fmt.Fprintln(w, "Sources:")
			for _, field := range fields {
				fmt.Fprintf(w, "  %-16s %s\n", field, result.Sources[field])
			}
		}
	}

	return nil
}

// WriteMonth prints the stored month as a day table, marking today
func WriteMonth(w io.Writer, record *hijri.MonthRecord, today time.Time, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, record)
	}

	fmt.Fprintf(w, "%s %s (%s), %d days\n", record.HijriMonth, record.HijriYear, record.MonthNameArabic, record.TotalDays)
	fmt.Fprintf(w, "Fetched %s\n\n", record.FetchedAt.Format(time.RFC3339))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"", "Day", "Weekday", "Gregorian"})

	current, _ := record.EntryFor(today)
	for _, d := range record.Dates {
		marker := ""
		if d.HijriDay == current.HijriDay {
			marker = "*"
		}
		date := d.Date(today.Location())
		t.AppendRow(table.Row{marker, d.HijriDay, date.Weekday().String(), d.GregorianDate})
	}
	t.Render()
	return nil
}

// WriteToday prints the single-day view
func WriteToday(w io.Writer, snapshot *hijri.DaySnapshot, year string, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, snapshot)
	}

	if snapshot.HijriDay == "" {
		fmt.Fprintf(w, "%s is outside the stored month (%s %s); run check to refresh\n", snapshot.GregorianDate, snapshot.HijriMonth, year)
		return nil
	}
	fmt.Fprintf(w, "%s %s %s\n%s\n", snapshot.HijriDay, snapshot.HijriMonth, year, snapshot.GregorianDate)
	return nil
}

// decisionSummary is a one-line description used by watch
func decisionSummary(res *orchestrator.Result) string {
	if res.Decision.Action == schedule.Fetch && res.Record != nil {
		return fmt.Sprintf("fetched %s %s day %d", res.Record.HijriMonth, res.Record.HijriYear, res.Record.CurrentHijriDay)
	}
	return "skipped: " + res.Decision.Reason
}
