package testfixtures

import (
	"context"
	"testing"

	"github.com/example/rideshare-scheduler/internal/application"
	"github.com/example/rideshare-scheduler/internal/persistence"
	"github.com/example/rideshare-scheduler/internal/persistence/sqlite"
)

func weeklyScheduleParams() application.CreateScheduleParams {
	return application.CreateScheduleParams{
		Input: application.PatternInput{
			PatternType:     "weekly",
			Weekdays:        []int{1, 3, 5},
			StartDate:       ReferenceTime(),
			EndType:         application.EndTypeNever,
			DepartureHour:   8,
			DepartureMinute: 30,
		},
		Template: application.RideTemplate{
			DriverID:    "driver-001",
			Origin:      "Campus North",
			Destination: "Central Station",
			Seats:       3,
		},
		HorizonDays: 13,
	}
}

func TestServiceFactoryMaterializesAgainstSQLite(t *testing.T) {
	pool := OpenSQLite(t)
	patterns := sqlite.NewPatternRepository(pool)
	occurrences := sqlite.NewOccurrenceRepository(pool)

	factory := NewServiceFactory(
		WithClock(NewClock(ReferenceTime())),
		WithIDGenerator(NewIDGenerator("ride")),
	)
	svc := factory.NewMaterializer(patterns, occurrences, nil)

	result, err := svc.CreateRecurringSchedule(context.Background(), weeklyScheduleParams())
	if err != nil {
		t.Fatalf("CreateRecurringSchedule returned error: %v", err)
	}
	if result.PatternID == nil || *result.PatternID != "ride-1" {
		t.Fatalf("expected pattern ID ride-1, got %v", result.PatternID)
	}
	// Jan 1 Wed, 3, 6, 8, 10, 13 inside the 13 day horizon from ReferenceTime.
	if result.CreatedCount != 6 {
		t.Fatalf("expected 6 materialized rides, got %d", result.CreatedCount)
	}

	rides, err := occurrences.ListOccurrencesForPattern(context.Background(), *result.PatternID)
	if err != nil {
		t.Fatalf("ListOccurrencesForPattern returned error: %v", err)
	}
	if len(rides) != 6 {
		t.Fatalf("expected 6 persisted rides, got %d", len(rides))
	}

	// Advancing the clock a week grows the window by the week that rolled in.
	factory.Clock.AdvanceDays(7)
	extended, err := svc.ExtendHorizon(context.Background(), *result.PatternID, 13)
	if err != nil {
		t.Fatalf("ExtendHorizon returned error: %v", err)
	}
	if extended.CreatedCount != 3 {
		t.Fatalf("expected 3 new rides after a week, got %d", extended.CreatedCount)
	}

	repeat, err := svc.ExtendHorizon(context.Background(), *result.PatternID, 13)
	if err != nil {
		t.Fatalf("repeat ExtendHorizon returned error: %v", err)
	}
	if repeat.CreatedCount != 0 {
		t.Fatalf("repeat extension created %d rides", repeat.CreatedCount)
	}
}

// unavailablePatternStore models a recurrence store whose schema was never
// provisioned while the ride store stays healthy.
type unavailablePatternStore struct{}

func (unavailablePatternStore) CreatePattern(ctx context.Context, pattern persistence.RecurrencePattern) error {
	return persistence.ErrStoreUnavailable
}

func (unavailablePatternStore) GetPattern(ctx context.Context, id string) (persistence.RecurrencePattern, error) {
	return persistence.RecurrencePattern{}, persistence.ErrStoreUnavailable
}

func (unavailablePatternStore) UpdatePatternProgress(ctx context.Context, id string, occurrencesCreated int, isActive bool) error {
	return persistence.ErrStoreUnavailable
}

func TestServiceFactoryFallsBackWhenPatternStoreUnavailable(t *testing.T) {
	pool := OpenSQLite(t)
	occurrences := sqlite.NewOccurrenceRepository(pool)

	factory := NewServiceFactory()
	svc := factory.NewMaterializer(unavailablePatternStore{}, occurrences, nil)

	result, err := svc.CreateRecurringSchedule(context.Background(), weeklyScheduleParams())
	if err != nil {
		t.Fatalf("expected degraded success, got error: %v", err)
	}
	if !result.Fallback || result.PatternID != nil || result.CreatedCount != 1 {
		t.Fatalf("unexpected fallback result: %+v", result)
	}

	rides, err := occurrences.ListOccurrencesForPattern(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("ListOccurrencesForPattern returned error: %v", err)
	}
	if len(rides) != 0 {
		t.Fatalf("fallback ride must carry no pattern reference, found %d linked rides", len(rides))
	}
}
