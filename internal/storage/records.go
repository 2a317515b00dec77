package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pfrederiksen/hijri-month/internal/hijri"
)

const (
	// MonthKey holds the full month record
	MonthKey = "hijri-month.json"
	// DayKey holds today's snapshot
	DayKey = "hijri.json"
)

// ErrCorrupt reports a stored artifact that exists but cannot be used
var ErrCorrupt = errors.New("corrupt stored record")

// Records reads and writes the calendar artifacts in a Store
type Records struct {
	store Store
}

// NewRecords wraps store
func NewRecords(store Store) *Records {
	return &Records{store: store}
}

// LoadMonth returns the stored month record, or nil when none exists.
// A record that does not decode or validate returns nil and an error wrapping ErrCorrupt.
func (r *Records) LoadMonth(ctx context.Context) (*hijri.MonthRecord, error) {
	data, found, err := r.store.Read(ctx, MonthKey)
	if err != nil {
		return nil, fmt.Errorf("loading month record: %w", err)
	}
	if !found {
		return nil, nil
	}

	var record hijri.MonthRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, MonthKey, err)
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, MonthKey, err)
	}

	return &record, nil
}

// SaveMonth validates and writes the month record
func (r *Records) SaveMonth(ctx context.Context, record *hijri.MonthRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("refusing to save month record: %w", err)
	}
	return r.save(ctx, MonthKey, record)
}

// LoadDay returns the stored day snapshot, or nil when none exists
func (r *Records) LoadDay(ctx context.Context) (*hijri.DaySnapshot, error) {
	data, found, err := r.store.Read(ctx, DayKey)
	if err != nil {
		return nil, fmt.Errorf("loading day snapshot: %w", err)
	}
	if !found {
		return nil, nil
	}

	var snapshot hijri.DaySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, DayKey, err)
	}
	return &snapshot, nil
}

// SaveDay writes the day snapshot
func (r *Records) SaveDay(ctx context.Context, snapshot *hijri.DaySnapshot) error {
	if snapshot == nil {
		return errors.New("refusing to save empty day snapshot")
	}
	return r.save(ctx, DayKey, snapshot)
}

func (r *Records) save(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := r.store.Write(ctx, key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}
