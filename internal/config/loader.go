package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// Config captures environment driven configuration values for the ride
// scheduler service.
type Config struct {
	SQLiteDSN   string
	HorizonDays int
	// ExtendSpec is the cron expression driving the periodic horizon
	// extension pass.
	ExtendSpec string
	LogLevel   slog.Level
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to sensible defaults; invalid values are
// collected and reported together so a misconfigured deployment fails with
// one complete message.
func Load() (Config, error) {
	cfg := Config{
		SQLiteDSN:   "file:ridescheduler.db?_pragma=foreign_keys(1)",
		HorizonDays: 30,
		ExtendSpec:  "@hourly",
		LogLevel:    slog.LevelInfo,
	}

	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("RIDESCHED_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if value := strings.TrimSpace(os.Getenv("RIDESCHED_HORIZON_DAYS")); value != "" {
		days, err := strconv.Atoi(value)
		if err != nil || days < 1 || days > 365 {
			invalid = append(invalid, "RIDESCHED_HORIZON_DAYS")
		} else {
			cfg.HorizonDays = days
		}
	}

	if spec := strings.TrimSpace(os.Getenv("RIDESCHED_EXTEND_SPEC")); spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			invalid = append(invalid, "RIDESCHED_EXTEND_SPEC")
		} else {
			cfg.ExtendSpec = spec
		}
	}

	if value := strings.TrimSpace(os.Getenv("RIDESCHED_LOG_LEVEL")); value != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err != nil {
			invalid = append(invalid, "RIDESCHED_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
