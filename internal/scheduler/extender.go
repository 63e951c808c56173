// Package scheduler runs the periodic horizon extension pass that keeps the
// materialized occurrence window rolling forward for every active pattern.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/rideshare-scheduler/internal/application"
	"github.com/example/rideshare-scheduler/internal/persistence"
)

// PatternLister enumerates patterns eligible for extension.
type PatternLister interface {
	ListActivePatterns(ctx context.Context) ([]persistence.RecurrencePattern, error)
}

// HorizonExtender materializes occurrences for a single pattern.
type HorizonExtender interface {
	ExtendHorizon(ctx context.Context, patternID string, horizonDays int) (application.ExtendResult, error)
}

// Extender walks all active patterns and extends each one's horizon. A
// failing pattern is logged and skipped; one broken pattern must not stall
// the rest of the fleet.
type Extender struct {
	patterns     PatternLister
	materializer HorizonExtender
	horizonDays  int
	logger       *slog.Logger
}

// NewExtender wires an extension pass over the given stores.
func NewExtender(patterns PatternLister, materializer HorizonExtender, horizonDays int, logger *slog.Logger) *Extender {
	if horizonDays <= 0 {
		horizonDays = application.DefaultHorizonDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extender{
		patterns:     patterns,
		materializer: materializer,
		horizonDays:  horizonDays,
		logger:       logger,
	}
}

// Run performs one extension pass. It returns an error only when the pattern
// listing itself fails; per pattern failures are contained.
func (e *Extender) Run(ctx context.Context) error {
	if e == nil {
		return fmt.Errorf("Extender is nil")
	}

	patterns, err := e.patterns.ListActivePatterns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active patterns: %w", err)
	}

	total := 0
	failed := 0
	for _, pattern := range patterns {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		result, err := e.materializer.ExtendHorizon(ctx, pattern.ID, e.horizonDays)
		if err != nil {
			failed++
			e.logger.Warn("horizon extension failed",
				"pattern_id", pattern.ID,
				"error_kind", application.ErrorKind(err),
				"error", err,
			)
			continue
		}
		total += result.CreatedCount
	}

	e.logger.Info("horizon extension pass complete",
		"patterns", len(patterns),
		"created_count", total,
		"failed", failed,
	)

	return nil
}
