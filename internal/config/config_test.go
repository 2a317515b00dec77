package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/hijri-month/internal/logger"
)

var configKeys = []string{
	"HIJRI_SOURCE_URL", "HIJRI_DATA_DIR", "HIJRI_SEED_FILE", "HIJRI_STORE",
	"REDIS_ADDR", "REDIS_USERNAME", "REDIS_PASSWORD", "HIJRI_REDIS_PREFIX",
	"HIJRI_FETCHER", "HIJRI_TIMEZONE", "HIJRI_PROBE_TIMEOUT", "HIJRI_FETCH_TIMEOUT",
	"HIJRI_READY_TIMEOUT", "HIJRI_PROBE_SETTLE", "HIJRI_SETTLE", "HIJRI_DEBOUNCE",
	"HIJRI_STEADY_FIRST_DAY", "HIJRI_STEADY_LAST_DAY", "HIJRI_WATCH_SCHEDULE",
	"HIJRI_WEBHOOK_URL", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every variable Load reads; t.Setenv restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SourceURL != DefaultSourceURL {
		t.Errorf("SourceURL = %q", cfg.SourceURL)
	}
	if cfg.Store != StoreFile || cfg.Fetcher != FetcherChrome {
		t.Errorf("Store/Fetcher = %s/%s", cfg.Store, cfg.Fetcher)
	}
	if cfg.Debounce != 20*time.Hour || cfg.SteadyFirstDay != 2 || cfg.SteadyLastDay != 28 {
		t.Errorf("policy = %s [%d, %d]", cfg.Debounce, cfg.SteadyFirstDay, cfg.SteadyLastDay)
	}
	if cfg.ProbeTimeout != 30*time.Second || cfg.FetchTimeout != 90*time.Second || cfg.ReadyTimeout != 10*time.Second {
		t.Errorf("timeouts = %s/%s/%s", cfg.ProbeTimeout, cfg.FetchTimeout, cfg.ReadyTimeout)
	}

	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, cfg.Location).Zone()
	if offset != 5*3600+1800 {
		t.Errorf("default location offset = %d, want +05:30", offset)
	}
	if cfg.LogLevel != logger.LevelInfo || cfg.LogFormat != logger.FormatJSON {
		t.Errorf("logging = %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HIJRI_STORE", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("HIJRI_FETCHER", "http")
	t.Setenv("HIJRI_TIMEZONE", "UTC")
	t.Setenv("HIJRI_DEBOUNCE", "12h")
	t.Setenv("HIJRI_STEADY_FIRST_DAY", "3")
	t.Setenv("HIJRI_WATCH_SCHEDULE", "@hourly")
	t.Setenv("HIJRI_WEBHOOK_URL", "https://hooks.example.com/hijri")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Store != StoreRedis || cfg.RedisAddr != "cache:6380" {
		t.Errorf("redis = %s %s", cfg.Store, cfg.RedisAddr)
	}
	if cfg.Fetcher != FetcherHTTP {
		t.Errorf("Fetcher = %s", cfg.Fetcher)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v", cfg.Location)
	}
	if cfg.Debounce != 12*time.Hour || cfg.SteadyFirstDay != 3 {
		t.Errorf("policy = %s from day %d", cfg.Debounce, cfg.SteadyFirstDay)
	}
	if cfg.WatchSchedule != "@hourly" {
		t.Errorf("WatchSchedule = %q", cfg.WatchSchedule)
	}
	if cfg.WebhookURL != "https://hooks.example.com/hijri" {
		t.Errorf("WebhookURL = %q", cfg.WebhookURL)
	}
	if cfg.LogLevel != logger.LevelDebug || cfg.LogFormat != logger.FormatConsole {
		t.Errorf("logging = %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    string
	}{
		{"HIJRI_TIMEZONE", "Mars/Olympus", "HIJRI_TIMEZONE"},
		{"HIJRI_DEBOUNCE", "twenty hours", "HIJRI_DEBOUNCE"},
		{"HIJRI_FETCH_TIMEOUT", "-5s", "timeouts"},
		{"HIJRI_STORE", "postgres", "invalid store"},
		{"HIJRI_FETCHER", "wget", "invalid fetcher"},
		{"HIJRI_STEADY_LAST_DAY", "31", "steady window"},
		{"HIJRI_STEADY_FIRST_DAY", "x", "HIJRI_STEADY_FIRST_DAY"},
		{"HIJRI_WATCH_SCHEDULE", "every now and then", "watch schedule"},
		{"LOG_LEVEL", "loud", "LOG_LEVEL"},
		{"LOG_FORMAT", "yaml", "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() with %s=%q should fail", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HIJRI_SOURCE_URL", "http://from-environment.test/")

	path := filepath.Join(t.TempDir(), "hijri.env")
	content := "HIJRI_SOURCE_URL=http://from-file.test/\nHIJRI_DATA_DIR=/var/lib/hijri\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("HIJRI_DATA_DIR") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DataDir != "/var/lib/hijri" {
		t.Errorf("DataDir = %q, want value from file", cfg.DataDir)
	}
	if cfg.SourceURL != "http://from-environment.test/" {
		t.Errorf("SourceURL = %q, environment should win over file", cfg.SourceURL)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Load() with a missing explicit file should fail")
	}
}
