package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/hijri-month/internal/calendar"
	"github.com/pfrederiksen/hijri-month/internal/hijri"
)

var flagOut string

// errNoRecord is returned by the read-only commands before the first check
var errNoRecord = errors.New("no stored month record, run check first")

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(flagFormat)
			if err != nil {
				return err
			}
			record, loc, err := loadStoredMonth(cmd)
			if err != nil {
				return err
			}
			return WriteMonth(cmd.OutOrStdout(), record, hijri.CivilDate(time.Now(), loc), format)
		},
	}
}

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Print today's Hijri date from the stored month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(flagFormat)
			if err != nil {
				return err
			}
			record, loc, err := loadStoredMonth(cmd)
			if err != nil {
				return err
			}
			snapshot := record.Snapshot(hijri.CivilDate(time.Now(), loc))
			return WriteToday(cmd.OutOrStdout(), snapshot, record.HijriYear, format)
		},
	}
}

func newICSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Export the stored month as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			record, _, err := loadStoredMonth(cmd)
			if err != nil {
				return err
			}

			ics := calendar.GenerateICS(record, record.FetchedAt)
			if flagOut == "" || flagOut == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), ics)
				return err
			}
			if err := os.WriteFile(flagOut, []byte(ics), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", flagOut, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d days of %s to %s\n", len(record.Dates), calendar.CalendarName(record), flagOut)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

// loadStoredMonth reads the month record for the read-only commands
func loadStoredMonth(cmd *cobra.Command) (*hijri.MonthRecord, *time.Location, error) {
	e, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	record, err := e.records.LoadMonth(ctx)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, errNoRecord
	}
	return record, e.cfg.Location, nil
}
