// Package schedule decides whether the calendar source needs to be scraped again.
package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/pfrederiksen/hijri-month/internal/hijri"
	"github.com/pfrederiksen/hijri-month/internal/scraper"
)

const (
	// DefaultSteadyFirstDay and DefaultSteadyLastDay bound the middle of the month,
	// where the stored date table cannot change.
	DefaultSteadyFirstDay = 2
	DefaultSteadyLastDay  = 28
	// DefaultDebounce is the minimum age of the stored record before a
	// transition-zone day triggers another fetch.
	DefaultDebounce = 20 * time.Hour
)

// Action is the outcome of a scheduling decision
type Action string

const (
	Fetch Action = "fetch"
	Skip  Action = "skip"
)

// Branch names the rule that produced a Decision
type Branch string

const (
	BranchBootstrap          Branch = "bootstrap"
	BranchMonthRollover      Branch = "month-rollover"
	BranchSteadyMonth        Branch = "steady-month"
	BranchTransitionRefresh  Branch = "transition-refresh"
	BranchTransitionDebounce Branch = "transition-debounce"
	BranchForced             Branch = "forced"
)

// Policy holds the tunable scheduling constants
type Policy struct {
	SteadyFirstDay int
	SteadyLastDay  int
	Debounce       time.Duration
}

// DefaultPolicy returns the production scheduling policy
func DefaultPolicy() Policy {
	return Policy{
		SteadyFirstDay: DefaultSteadyFirstDay,
		SteadyLastDay:  DefaultSteadyLastDay,
		Debounce:       DefaultDebounce,
	}
}

// Decision is the result of Decide along with everything needed to log it
type Decision struct {
	Action          Action
	Branch          Branch
	Reason          string
	HoursSinceFetch float64 // -1 when nothing is stored or the stored record has no capture time
	StoredMonth     string
	StoredDay       int
	Observed        scraper.Probe
}

// ShouldFetch reports whether the decision asks for a full fetch
func (d Decision) ShouldFetch() bool {
	return d.Action == Fetch
}

// Decide compares the stored record with a fresh probe. A month mismatch always
// fetches; within the same month only the transition zone can fetch, and only
// once the stored record is older than the debounce window.
func (p Policy) Decide(stored *hijri.MonthRecord, observed scraper.Probe, now time.Time) Decision {
	d := Decision{
		HoursSinceFetch: -1,
		Observed:        observed,
	}

	if stored == nil {
		d.Action, d.Branch = Fetch, BranchBootstrap
		d.Reason = "no stored month record"
		return d
	}

	d.StoredMonth = stored.HijriMonth
	d.StoredDay = stored.CurrentHijriDay

	var age time.Duration
	if stored.FetchedAt.IsZero() {
		age = time.Duration(math.MaxInt64)
	} else {
		age = now.Sub(stored.FetchedAt)
		d.HoursSinceFetch = age.Hours()
	}

	if stored.HijriMonth != observed.Month {
		d.Action, d.Branch = Fetch, BranchMonthRollover
		d.Reason = fmt.Sprintf("stored month %q, source shows %q", stored.HijriMonth, observed.Month)
		return d
	}

	if observed.Day >= p.SteadyFirstDay && observed.Day <= p.SteadyLastDay {
		d.Action, d.Branch = Skip, BranchSteadyMonth
		d.Reason = fmt.Sprintf("day %d is inside the steady window [%d, %d]", observed.Day, p.SteadyFirstDay, p.SteadyLastDay)
		return d
	}

	if age >= p.Debounce {
		d.Action, d.Branch = Fetch, BranchTransitionRefresh
		d.Reason = fmt.Sprintf("transition day %d and stored record older than %s", observed.Day, p.Debounce)
		return d
	}

	d.Action, d.Branch = Skip, BranchTransitionDebounce
	d.Reason = fmt.Sprintf("transition day %d but stored record is only %.1fh old", observed.Day, age.Hours())
	return d
}

// Force turns d into a fetch regardless of the rule that fired
func (d Decision) Force() Decision {
	if d.Action == Fetch {
		return d
	}
	d.Action, d.Branch = Fetch, BranchForced
	d.Reason = "fetch forced, scheduler said: " + d.Reason
	return d
}

// Decide applies the default policy
func Decide(stored *hijri.MonthRecord, observed scraper.Probe, now time.Time) Decision {
	return DefaultPolicy().Decide(stored, observed, now)
}
