package cli

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/hijri-month/internal/logger"
)

var (
	flagSchedule string
	flagNoRunNow bool
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run check on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	cmd.Flags().StringVar(&flagSchedule, "schedule", "", "Cron schedule (default: HIJRI_WATCH_SCHEDULE or */30 * * * *)")
	cmd.Flags().BoolVar(&flagNoRunNow, "no-run-now", false, "Wait for the first scheduled run instead of checking at startup")
	addCheckFlags(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	spec := e.cfg.WatchSchedule
	if flagSchedule != "" {
		spec = flagSchedule
	}

	o, err := newOrchestrator(e.cfg, e.records, flagForce)
	if err != nil {
		return err
	}
	n, err := newNotifier(cmd, e.cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	budget := e.cfg.ProbeTimeout + e.cfg.FetchTimeout
	job := func() {
		runCtx, cancel := context.WithTimeout(ctx, budget)
		defer cancel()

		res, err := o.Run(runCtx)
		if err != nil {
			logger.Error("Scheduled check failed", logger.Fields{"schedule": spec}, err)
			return
		}
		announce(runCtx, n, res)
		logger.Info("Scheduled check finished", logger.Fields{
			"branch":  string(res.Decision.Branch),
			"summary": decisionSummary(res),
		})
	}

	cl := cronLogger{}
	c := cron.New(
		cron.WithLocation(e.cfg.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(spec, job); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	logger.Info("Watching calendar", logger.Fields{
		"schedule": spec,
		"timezone": e.cfg.Location.String(),
		"url":      e.cfg.SourceURL,
	})

	if !flagNoRunNow {
		job()
	}

	c.Start()
	<-ctx.Done()
	logger.Info("Stopping watch, waiting for a running check", nil)
	<-c.Stop().Done()
	return nil
}

// cronLogger routes cron's own messages into the structured log
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, kvFields(keysAndValues), err)
}

func kvFields(kv []interface{}) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
