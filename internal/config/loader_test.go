package config

import (
	"log/slog"
	"testing"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		for _, key := range []string{
			"RIDESCHED_SQLITE_DSN",
			"RIDESCHED_HORIZON_DAYS",
			"RIDESCHED_EXTEND_SPEC",
			"RIDESCHED_LOG_LEVEL",
		} {
			t.Setenv(key, "")
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.SQLiteDSN != "file:ridescheduler.db?_pragma=foreign_keys(1)" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.HorizonDays != 30 {
			t.Fatalf("expected default horizon of 30 days, got %d", cfg.HorizonDays)
		}
		if cfg.ExtendSpec != "@hourly" {
			t.Fatalf("expected default extend spec @hourly, got %q", cfg.ExtendSpec)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("expected default log level info, got %v", cfg.LogLevel)
		}
	})

	t.Run("honours explicit overrides", func(t *testing.T) {
		t.Setenv("RIDESCHED_SQLITE_DSN", "file:custom.db")
		t.Setenv("RIDESCHED_HORIZON_DAYS", "45")
		t.Setenv("RIDESCHED_EXTEND_SPEC", "*/30 * * * *")
		t.Setenv("RIDESCHED_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.SQLiteDSN != "file:custom.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.HorizonDays != 45 {
			t.Fatalf("expected horizon 45, got %d", cfg.HorizonDays)
		}
		if cfg.ExtendSpec != "*/30 * * * *" {
			t.Fatalf("unexpected extend spec: %q", cfg.ExtendSpec)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("expected debug level, got %v", cfg.LogLevel)
		}
	})

	t.Run("collects invalid values into one error", func(t *testing.T) {
		t.Setenv("RIDESCHED_HORIZON_DAYS", "400")
		t.Setenv("RIDESCHED_EXTEND_SPEC", "not a cron spec")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "invalid environment variable values: RIDESCHED_HORIZON_DAYS, RIDESCHED_EXTEND_SPEC"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("rejects a non numeric horizon", func(t *testing.T) {
		t.Setenv("RIDESCHED_HORIZON_DAYS", "soon")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for non numeric horizon")
		}
	})
}
