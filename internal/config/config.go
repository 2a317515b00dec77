// Package config reads hijri-month settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/pfrederiksen/hijri-month/internal/logger"
)

const (
	DefaultSourceURL     = "https://www.acju.lk/calenders-en/"
	DefaultDataDir       = "~/.local/share/hijri-month"
	DefaultTimezone      = "Asia/Colombo"
	DefaultRedisAddr     = "localhost:6379"
	DefaultRedisPrefix   = "hijri:"
	DefaultWatchSchedule = "*/30 * * * *"

	StoreFile  = "file"
	StoreRedis = "redis"

	FetcherChrome = "chrome"
	FetcherHTTP   = "http"
)

// Config holds all runtime settings
type Config struct {
	SourceURL string
	DataDir   string
	SeedFile  string

	Store         string
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisPrefix   string

	Fetcher      string
	Location     *time.Location
	ProbeTimeout time.Duration
	FetchTimeout time.Duration
	ReadyTimeout time.Duration
	ProbeSettle  time.Duration
	Settle       time.Duration

	Debounce       time.Duration
	SteadyFirstDay int
	SteadyLastDay  int

	WatchSchedule string

	// WebhookURL receives an announcement when a new month is fetched
	WebhookURL string

	LogLevel  logger.Level
	LogFormat logger.Format
}

// Default returns the configuration used when no variable is set
func Default() *Config {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		loc = time.FixedZone(DefaultTimezone, 5*3600+1800)
	}
	return &Config{
		SourceURL:      DefaultSourceURL,
		DataDir:        DefaultDataDir,
		Store:          StoreFile,
		RedisAddr:      DefaultRedisAddr,
		RedisPrefix:    DefaultRedisPrefix,
		Fetcher:        FetcherChrome,
		Location:       loc,
		ProbeTimeout:   30 * time.Second,
		FetchTimeout:   90 * time.Second,
		ReadyTimeout:   10 * time.Second,
		ProbeSettle:    2 * time.Second,
		Settle:         3 * time.Second,
		Debounce:       20 * time.Hour,
		SteadyFirstDay: 2,
		SteadyLastDay:  28,
		WatchSchedule:  DefaultWatchSchedule,
		LogLevel:       logger.LevelInfo,
		LogFormat:      logger.FormatJSON,
	}
}

// Load reads configuration from environment variables and env files.
// Without arguments a missing .env in the working directory is ignored;
// files passed explicitly must exist. Variables already set in the
// environment take precedence over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("loading env files: %w", err)
	}

	cfg := Default()
	var err error

	setString(&cfg.SourceURL, "HIJRI_SOURCE_URL")
	setString(&cfg.DataDir, "HIJRI_DATA_DIR")
	setString(&cfg.SeedFile, "HIJRI_SEED_FILE")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisUsername, "REDIS_USERNAME")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.RedisPrefix, "HIJRI_REDIS_PREFIX")
	setString(&cfg.WatchSchedule, "HIJRI_WATCH_SCHEDULE")
	setString(&cfg.WebhookURL, "HIJRI_WEBHOOK_URL")

	if v := lookup("HIJRI_STORE"); v != "" {
		cfg.Store = strings.ToLower(v)
	}
	if v := lookup("HIJRI_FETCHER"); v != "" {
		cfg.Fetcher = strings.ToLower(v)
	}

	if v := lookup("HIJRI_TIMEZONE"); v != "" {
		if cfg.Location, err = time.LoadLocation(v); err != nil {
			return nil, fmt.Errorf("invalid HIJRI_TIMEZONE: %w", err)
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"HIJRI_PROBE_TIMEOUT", &cfg.ProbeTimeout},
		{"HIJRI_FETCH_TIMEOUT", &cfg.FetchTimeout},
		{"HIJRI_READY_TIMEOUT", &cfg.ReadyTimeout},
		{"HIJRI_PROBE_SETTLE", &cfg.ProbeSettle},
		{"HIJRI_SETTLE", &cfg.Settle},
		{"HIJRI_DEBOUNCE", &cfg.Debounce},
	}
	for _, d := range durations {
		if err := setDuration(d.dst, d.key); err != nil {
			return nil, err
		}
	}

	if err := setInt(&cfg.SteadyFirstDay, "HIJRI_STEADY_FIRST_DAY"); err != nil {
		return nil, err
	}
	if err := setInt(&cfg.SteadyLastDay, "HIJRI_STEADY_LAST_DAY"); err != nil {
		return nil, err
	}

	if cfg.LogLevel, err = logger.ParseLevel(lookup("LOG_LEVEL")); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat, err = logger.ParseFormat(lookup("LOG_FORMAT")); err != nil {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that can also be set from command-line flags
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreRedis:
	default:
		return fmt.Errorf("invalid store %q (want %s or %s)", c.Store, StoreFile, StoreRedis)
	}

	switch c.Fetcher {
	case FetcherChrome, FetcherHTTP:
	default:
		return fmt.Errorf("invalid fetcher %q (want %s or %s)", c.Fetcher, FetcherChrome, FetcherHTTP)
	}

	if c.SourceURL == "" {
		return errors.New("source URL is empty")
	}
	if c.Store == StoreFile && c.DataDir == "" {
		return errors.New("data directory is empty")
	}
	if c.Store == StoreRedis && c.RedisAddr == "" {
		return errors.New("REDIS_ADDR is empty")
	}

	if c.SteadyFirstDay < 1 || c.SteadyLastDay > 30 || c.SteadyFirstDay > c.SteadyLastDay {
		return fmt.Errorf("invalid steady window [%d, %d]", c.SteadyFirstDay, c.SteadyLastDay)
	}
	if c.ProbeTimeout <= 0 || c.FetchTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}

	if _, err := cron.ParseStandard(c.WatchSchedule); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", c.WatchSchedule, err)
	}
	return nil
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := lookup(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := lookup(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := lookup(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
