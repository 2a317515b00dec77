// Package cli implements the command-line interface for hijri-month.
//
// The root command (and its check alias) runs one scheduling cycle: probe the
// ACJU calendar, decide whether the stored month is stale, and re-scrape it
// when needed. show, today and ics read the stored month without touching the
// network; watch repeats check on a cron schedule.
package cli
