package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/hijri-month/internal/browser"
	"github.com/pfrederiksen/hijri-month/internal/config"
	"github.com/pfrederiksen/hijri-month/internal/logger"
	"github.com/pfrederiksen/hijri-month/internal/lookup"
	"github.com/pfrederiksen/hijri-month/internal/normalize"
	"github.com/pfrederiksen/hijri-month/internal/notifier"
	"github.com/pfrederiksen/hijri-month/internal/orchestrator"
	"github.com/pfrederiksen/hijri-month/internal/schedule"
	"github.com/pfrederiksen/hijri-month/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

var (
	flagDataDir      string
	flagStore        string
	flagFetcher      string
	flagURL          string
	flagSeedFile     string
	flagEnvFile      string
	flagFormat       string
	flagVerbose      bool
	flagForce        bool
	flagNotifyDryRun bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hijri-month",
		Short: "Keep a local copy of the current ACJU Hijri month",
		Long: `A CLI tool that tracks the current Hijri month published by the ACJU.
Each run probes the calendar page and re-scrapes it only when the month has
changed or a month-end day may have been updated.`,
		Version:       Version,
		RunE:          runCheck,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagDataDir, "data-dir", config.DefaultDataDir, "Data directory for the file store")
	pf.StringVar(&flagStore, "store", config.StoreFile, "Record store: file or redis")
	pf.StringVar(&flagSeedFile, "seed-file", "", "Month-start seed file (default: built-in edition)")
	pf.StringVar(&flagEnvFile, "env-file", "", "Load settings from this env file instead of ./.env")
	pf.StringVar(&flagFormat, "format", "text", "Output format: text or json")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable verbose output and debug logging")

	addCheckFlags(cmd)

	check := &cobra.Command{
		Use:   "check",
		Short: "Probe the calendar and re-scrape the month if needed",
		RunE:  runCheck,
	}
	addCheckFlags(check)

	cmd.AddCommand(check, newShowCmd(), newTodayCmd(), newICSCmd(), newWatchCmd())
	return cmd
}

func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagForce, "force", false, "Fetch even when the scheduler would skip")
	cmd.Flags().StringVar(&flagFetcher, "fetcher", config.FetcherChrome, "Page fetcher: chrome or http")
	cmd.Flags().StringVar(&flagURL, "url", config.DefaultSourceURL, "Calendar page URL")
	cmd.Flags().BoolVar(&flagNotifyDryRun, "notify-dry-run", false, "Print new-month announcements instead of posting them")
}

// env is the per-invocation runtime built from config and flags
type env struct {
	cfg     *config.Config
	records *storage.Records
	closers []func() error
}

func (e *env) Close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			logger.Warn("Closing resource failed", logger.Fields{"error": err.Error()})
		}
	}
}

// setup loads configuration, applies flags set on the command line, configures
// logging and opens the record store.
func setup(cmd *cobra.Command) (*env, error) {
	var envFiles []string
	if flagEnvFile != "" {
		envFiles = append(envFiles, flagEnvFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if flags.Changed("store") {
		cfg.Store = strings.ToLower(flagStore)
	}
	if flags.Changed("seed-file") {
		cfg.SeedFile = flagSeedFile
	}
	if flags.Lookup("fetcher") != nil && flags.Changed("fetcher") {
		cfg.Fetcher = strings.ToLower(flagFetcher)
	}
	if flags.Lookup("url") != nil && flags.Changed("url") {
		cfg.SourceURL = flagURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.NewWithFormat(level, cfg.LogFormat, cmd.ErrOrStderr()))

	e := &env{cfg: cfg}
	switch cfg.Store {
	case config.StoreRedis:
		rs := storage.NewRedisStore(storage.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword), cfg.RedisPrefix)
		e.closers = append(e.closers, rs.Close)
		if err := rs.Ping(cmd.Context()); err != nil {
			e.Close()
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
		e.records = storage.NewRecords(rs)
		logger.Debug("Using redis store", logger.Fields{"addr": cfg.RedisAddr, "prefix": cfg.RedisPrefix})
	default:
		fs, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
		e.records = storage.NewRecords(fs)
		logger.Debug("Using file store", logger.Fields{"dir": fs.Dir()})
	}

	return e, nil
}

// newOrchestrator wires the pipeline described by cfg
func newOrchestrator(cfg *config.Config, records *storage.Records, force bool) (*orchestrator.Orchestrator, error) {
	tables, err := lookup.Load(cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("loading seed tables: %w", err)
	}

	b, err := browser.New(cfg.Fetcher)
	if err != nil {
		return nil, err
	}

	opts := orchestrator.Options{
		URL:          cfg.SourceURL,
		ProbeTimeout: cfg.ProbeTimeout,
		FetchTimeout: cfg.FetchTimeout,
		ReadyTimeout: cfg.ReadyTimeout,
		ProbeSettle:  cfg.ProbeSettle,
		Settle:       cfg.Settle,
		Policy: schedule.Policy{
			SteadyFirstDay: cfg.SteadyFirstDay,
			SteadyLastDay:  cfg.SteadyLastDay,
			Debounce:       cfg.Debounce,
		},
		Force: force,
	}

	logger.Debug("Pipeline configured", logger.Fields{
		"url":          opts.URL,
		"fetcher":      cfg.Fetcher,
		"seed_edition": tables.Edition,
		"timezone":     cfg.Location.String(),
	})
	return orchestrator.New(b, records, normalize.New(tables, cfg.Location), opts), nil
}

// newNotifier returns the announcement sink for this invocation, or nil when none is configured
func newNotifier(cmd *cobra.Command, cfg *config.Config) (notifier.Notifier, error) {
	if flagNotifyDryRun {
		return notifier.NewDryRunNotifier(cmd.ErrOrStderr()), nil
	}
	if cfg.WebhookURL == "" {
		return nil, nil
	}
	return notifier.NewWebhookNotifier(cfg.WebhookURL)
}

// announce posts a new-month announcement after a fetch that replaced a different month.
// Delivery failures are logged; the record is already saved.
func announce(ctx context.Context, n notifier.Notifier, res *orchestrator.Result) {
	if n == nil || res == nil || !res.Fetched {
		return
	}
	a, ok := notifier.NewAnnouncement(res.Record, res.Decision.StoredMonth)
	if !ok {
		return
	}
	if err := n.Notify(ctx, a); err != nil {
		logger.Warn("Announcing new month failed", logger.Fields{"month": a.Month, "error": err.Error()})
		return
	}
	logger.IncrCounter("announcements.sent")
	logger.Info("Announced new month", logger.Fields{"month": a.Month, "previous": a.PreviousMonth})
}

// runCheck is the main command logic
func runCheck(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	o, err := newOrchestrator(e.cfg, e.records, flagForce)
	if err != nil {
		return err
	}
	n, err := newNotifier(cmd, e.cfg)
	if err != nil {
		return err
	}

	res, err := o.Run(cmd.Context())
	if err == nil {
		announce(cmd.Context(), n, res)
	}
	if flagVerbose {
		logger.FlushMetrics()
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	result := NewOutputResult(res, time.Now().UTC())
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(s))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// Execute runs the CLI and exits with ExitError on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Interrupted")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
