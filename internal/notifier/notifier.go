package notifier

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/hijri-month/internal/hijri"
)

// Announcement describes a newly started Hijri month
type Announcement struct {
	Month         string `json:"hijriMonth"`
	Year          string `json:"hijriYear"`
	Arabic        string `json:"monthNameArabic"`
	PreviousMonth string `json:"previousMonth"`
	FirstDay      string `json:"firstDay"`
	LastDay       string `json:"lastDay"`
	TotalDays     int    `json:"totalDays"`
}

// Notifier defines the interface for announcing month changes
type Notifier interface {
	// Notify delivers a single announcement
	Notify(ctx context.Context, a Announcement) error
}

// NewAnnouncement returns an announcement when record replaces a different
// stored month. It returns false on first run (no previous month) and when the
// record is a refresh of the month already stored.
func NewAnnouncement(record *hijri.MonthRecord, previousMonth string) (Announcement, bool) {
	if record == nil || len(record.Dates) == 0 || previousMonth == "" || previousMonth == record.HijriMonth {
		return Announcement{}, false
	}
	return Announcement{
		Month:         record.HijriMonth,
		Year:          record.HijriYear,
		Arabic:        record.MonthNameArabic,
		PreviousMonth: previousMonth,
		FirstDay:      record.Dates[0].GregorianDate,
		LastDay:       record.Dates[len(record.Dates)-1].GregorianDate,
		TotalDays:     record.TotalDays,
	}, true
}

// Text renders the announcement as a single chat message
func (a Announcement) Text() string {
	name := a.Month
	if a.Arabic != "" {
		name = fmt.Sprintf("%s (%s)", a.Month, a.Arabic)
	}
	return fmt.Sprintf("🌙 %s %s has begun\n\n📅 %s to %s (%d days)", name, a.Year, a.FirstDay, a.LastDay, a.TotalDays)
}
