// Package orchestrator runs one scheduling cycle: probe the calendar page,
// decide whether to scrape it, and when needed fetch, extract, normalize and
// persist the month.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/hijri-month/internal/browser"
	"github.com/pfrederiksen/hijri-month/internal/hijri"
	"github.com/pfrederiksen/hijri-month/internal/logger"
	"github.com/pfrederiksen/hijri-month/internal/normalize"
	"github.com/pfrederiksen/hijri-month/internal/schedule"
	"github.com/pfrederiksen/hijri-month/internal/scraper"
	"github.com/pfrederiksen/hijri-month/internal/storage"
)

// ErrUnknownMonth is returned when a full fetch shows no month heading. The
// stored record is left as it was.
var ErrUnknownMonth = errors.New("no month heading on the calendar page")

// Options controls a run
type Options struct {
	URL          string
	ProbeTimeout time.Duration
	FetchTimeout time.Duration
	ReadyTimeout time.Duration
	ProbeSettle  time.Duration
	Settle       time.Duration
	Policy       schedule.Policy
	// Force fetches even when the scheduler would skip
	Force bool
}

// DefaultOptions returns production timeouts against the ACJU calendar
func DefaultOptions() Options {
	return Options{
		URL:          scraper.CalendarURL,
		ProbeTimeout: 30 * time.Second,
		FetchTimeout: 90 * time.Second,
		ReadyTimeout: 10 * time.Second,
		ProbeSettle:  2 * time.Second,
		Settle:       3 * time.Second,
		Policy:       schedule.DefaultPolicy(),
	}
}

// Result describes what a run did
type Result struct {
	Decision schedule.Decision
	// Fetched is true when a new month record was written
	Fetched     bool
	ProbeFailed bool
	// Record is the new record after a fetch, or the stored one after a skip (nil if none)
	Record *hijri.MonthRecord
	Day    *hijri.DaySnapshot
	// Sources maps each extracted field to the strategy that produced it
	Sources  map[string]string
	Warnings []string
}

// Orchestrator wires the browser, scraper, normalizer, scheduler and storage together
type Orchestrator struct {
	browser    browser.Browser
	records    *storage.Records
	extractor  *scraper.Extractor
	normalizer *normalize.Normalizer
	opts       Options

	// Now is the scheduling clock
	Now func() time.Time
}

// New creates an Orchestrator
func New(b browser.Browser, records *storage.Records, n *normalize.Normalizer, opts Options) *Orchestrator {
	return &Orchestrator{
		browser:    b,
		records:    records,
		extractor:  scraper.NewExtractor(),
		normalizer: n,
		opts:       opts,
		Now:        time.Now,
	}
}

// Run performs one cycle. It reads the stored record once and writes at most
// one month record and one day snapshot. Any failure on the fetch path is
// returned and nothing is persisted. A skip never fails on the day snapshot
// alone; that write error is reported as a warning.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() {
		logger.RecordTiming("run.duration", time.Since(start))
	}()

	result := &Result{}

	stored, err := o.records.LoadMonth(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrCorrupt) {
			return nil, fmt.Errorf("reading stored month: %w", err)
		}
		logger.Warn("Stored month record is unusable, treating as absent", logger.Fields{
			"key":    storage.MonthKey,
			"reason": err.Error(),
		})
		result.Warnings = append(result.Warnings, err.Error())
		stored = nil
	}

	observed, err := o.probe(ctx)
	if err != nil {
		logger.Warn("Probe failed, assuming unknown month", logger.Fields{
			"url":   o.opts.URL,
			"error": err.Error(),
		})
		logger.IncrCounter("probe.failures")
		result.ProbeFailed = true
		result.Warnings = append(result.Warnings, "probe failed: "+err.Error())
		observed = scraper.DefaultProbe()
	}

	now := o.Now()
	decision := o.opts.Policy.Decide(stored, observed, now)
	if o.opts.Force {
		decision = decision.Force()
	}
	result.Decision = decision
	logDecision(decision)

	if !decision.ShouldFetch() {
		logger.IncrCounter("runs.skip")
		result.Record = stored
		if stored != nil {
			day := stored.Snapshot(o.localDate(now))
			result.Day = day
			if err := o.records.SaveDay(ctx, day); err != nil {
				logger.Warn("Refreshing day snapshot failed", logger.Fields{
					"key":   storage.DayKey,
					"error": err.Error(),
				})
				result.Warnings = append(result.Warnings, "day snapshot not refreshed: "+err.Error())
			}
		}
		return result, nil
	}

	record, raw, err := o.fetch(ctx, now)
	if err != nil {
		logger.IncrCounter("runs.failed")
		logger.Error("Full fetch failed", logger.Fields{"url": o.opts.URL}, err)
		return result, err
	}
	result.Sources = raw.Sources()

	if w := o.checkReportedDate(raw, now); w != "" {
		result.Warnings = append(result.Warnings, w)
	}

	if err := o.records.SaveMonth(ctx, record); err != nil {
		return result, fmt.Errorf("persisting month record: %w", err)
	}
	day := record.Snapshot(o.localDate(now))
	if err := o.records.SaveDay(ctx, day); err != nil {
		return result, fmt.Errorf("persisting day snapshot: %w", err)
	}

	logger.IncrCounter("runs.fetch")
	logger.SetGauge("month.total_days", float64(record.TotalDays))
	logger.Info("Stored month record", logger.Fields{
		"hijri_month": record.HijriMonth,
		"hijri_year":  record.HijriYear,
		"current_day": record.CurrentHijriDay,
		"total_days":  record.TotalDays,
		"first_day":   record.Dates[0].GregorianDate,
		"sources":     result.Sources,
	})

	result.Fetched = true
	result.Record = record
	result.Day = day
	return result, nil
}

// probe takes a quick snapshot without waiting for the calendar to render
func (o *Orchestrator) probe(ctx context.Context) (scraper.Probe, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.ProbeTimeout)
	defer cancel()

	started := time.Now()
	html, err := o.browser.Snapshot(ctx, browser.Request{
		URL:    o.opts.URL,
		Settle: o.opts.ProbeSettle,
	})
	logger.RecordTiming("browser.probe", time.Since(started))
	if err != nil {
		return scraper.Probe{}, err
	}

	raw, err := o.extractor.ExtractString(html)
	if err != nil {
		return scraper.Probe{}, err
	}

	p := raw.Probe()
	logger.Debug("Probe observation", logger.Fields{
		"day":        p.Day,
		"month":      p.Month,
		"total_days": p.TotalDays,
		"sources":    raw.Sources(),
	})
	return p, nil
}

// fetch takes the full snapshot and builds a validated record from it
func (o *Orchestrator) fetch(ctx context.Context, now time.Time) (*hijri.MonthRecord, *scraper.RawExtraction, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.FetchTimeout)
	defer cancel()

	started := time.Now()
	html, err := o.browser.Snapshot(ctx, browser.Request{
		URL:           o.opts.URL,
		ReadySelector: scraper.ReadySelector,
		ReadyTimeout:  o.opts.ReadyTimeout,
		Settle:        o.opts.Settle,
	})
	logger.RecordTiming("browser.fetch", time.Since(started))
	if err != nil {
		return nil, nil, fmt.Errorf("full fetch of %s: %w", o.opts.URL, err)
	}

	raw, err := o.extractor.ExtractString(html)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting calendar: %w", err)
	}

	record, err := o.normalizer.Normalize(raw, now)
	if err != nil {
		return nil, nil, err
	}
	if record.HijriMonth == hijri.UnknownMonth {
		return nil, nil, fmt.Errorf("full fetch of %s: %w", o.opts.URL, ErrUnknownMonth)
	}
	return record, raw, nil
}

// checkReportedDate compares the page's own "today" with the observation date
func (o *Orchestrator) checkReportedDate(raw *scraper.RawExtraction, now time.Time) string {
	text, ok := raw.CurrentDateRaw.Get()
	if !ok {
		return ""
	}
	reported := hijri.ParseGregorian(text)
	if reported.IsZero() {
		return ""
	}

	today := o.localDate(now)
	if hijri.DaysBetween(reported, today) == 0 {
		return ""
	}

	w := fmt.Sprintf("page reports today as %s, local date is %s", hijri.FormatGregorian(reported), hijri.FormatGregorian(today))
	logger.Warn("Page date differs from local date", logger.Fields{
		"reported": strings.TrimSpace(text),
		"local":    hijri.FormatDisplay(today),
	})
	return w
}

func (o *Orchestrator) localDate(now time.Time) time.Time {
	var loc *time.Location
	if o.normalizer != nil {
		loc = o.normalizer.Location
	}
	return hijri.CivilDate(now, loc)
}

func logDecision(d schedule.Decision) {
	fields := logger.Fields{
		"action":          string(d.Action),
		"branch":          string(d.Branch),
		"reason":          d.Reason,
		"observed_day":    d.Observed.Day,
		"observed_month":  d.Observed.Month,
		"observed_length": d.Observed.TotalDays,
		"stored_day":      d.StoredDay,
		"stored_month":    d.StoredMonth,
	}
	if d.HoursSinceFetch >= 0 {
		fields["hours_since_fetch"] = fmt.Sprintf("%.1f", d.HoursSinceFetch)
	}
	logger.Info("Scheduling decision", fields)
}
