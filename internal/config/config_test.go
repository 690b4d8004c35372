package config

import (
	"context"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"MAX_FILE_SIZE", "HISTORY_LIMIT", "STATS_WINDOW_DAYS", "PERSIST_FAILED_INFERENCE", "INFERENCE_TIMEOUT", "QDRANT_URL", "DB_DRIVER"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Storage.MaxFileSize != 16*1024*1024 {
		t.Fatalf("expected 16 MiB upload limit, got %d", cfg.Storage.MaxFileSize)
	}
	if cfg.Analysis.HistoryLimit != 50 {
		t.Fatalf("expected history limit 50, got %d", cfg.Analysis.HistoryLimit)
	}
	if cfg.Analysis.StatsWindow != 7*24*time.Hour {
		t.Fatalf("expected 7 day stats window, got %s", cfg.Analysis.StatsWindow)
	}
	if !cfg.Analysis.PersistFailedInference {
		t.Fatalf("expected failed inference to be persisted by default")
	}
	if cfg.Gemini.Timeout != 0 {
		t.Fatalf("expected blocking inference by default, got %s", cfg.Gemini.Timeout)
	}
	if cfg.IndexEnabled() {
		t.Fatalf("expected index disabled without QDRANT_URL")
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.Database.Driver)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE", "1024")
	t.Setenv("PERSIST_FAILED_INFERENCE", "false")
	t.Setenv("INFERENCE_TIMEOUT", "45s")
	t.Setenv("STATS_WINDOW_DAYS", "30")
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "legacy-key")
	t.Setenv("QDRANT_URL", "http://localhost:6334")

	cfg := Load()

	if cfg.Storage.MaxFileSize != 1024 {
		t.Fatalf("expected 1024, got %d", cfg.Storage.MaxFileSize)
	}
	if cfg.Analysis.PersistFailedInference {
		t.Fatalf("expected persist policy to be disabled")
	}
	if cfg.Gemini.Timeout != 45*time.Second {
		t.Fatalf("expected 45s timeout, got %s", cfg.Gemini.Timeout)
	}
	if cfg.Analysis.StatsWindow != 30*24*time.Hour {
		t.Fatalf("expected 30 day window, got %s", cfg.Analysis.StatsWindow)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Fatalf("expected memory driver, got %q", cfg.Database.Driver)
	}
	if cfg.Gemini.APIKey != "legacy-key" {
		t.Fatalf("expected GOOGLE_API_KEY fallback, got %q", cfg.Gemini.APIKey)
	}
	if !cfg.IndexEnabled() {
		t.Fatalf("expected index enabled")
	}
}

func TestGetEnvAsDurationFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")
	if got := getEnvAsDuration("SESSION_TTL", "24h"); got != 24*time.Hour {
		t.Fatalf("expected fallback 24h, got %s", got)
	}
}

func TestRunMigrationsNilDatabase(t *testing.T) {
	if err := RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("expected nil database to be a no-op, got %v", err)
	}
}
