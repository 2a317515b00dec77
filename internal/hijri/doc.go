// Package hijri provides the persisted calendar types for the current Hijri month.
//
// A MonthRecord holds one Hijri month with its full day-by-day mapping to Gregorian
// dates, as scraped from the ACJU calendar and normalized. A DaySnapshot is the reduced
// "today only" view written alongside it for consumers that do not need the whole month.
package hijri
