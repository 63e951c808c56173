package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/rideshare-scheduler/internal/persistence"
	"github.com/example/rideshare-scheduler/internal/persistence/sqlite"
	"github.com/example/rideshare-scheduler/internal/testfixtures"
)

func TestOccurrenceRepository_CreateAndList(t *testing.T) {
	pool := testfixtures.OpenSQLite(t)
	patterns := sqlite.NewPatternRepository(pool)
	occurrences := sqlite.NewOccurrenceRepository(pool)
	ctx := context.Background()

	pattern := testfixtures.NewPatternFixture()
	if err := patterns.CreatePattern(ctx, pattern); err != nil {
		t.Fatalf("CreatePattern returned error: %v", err)
	}

	first := time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC)
	second := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

	// Insert out of order to exercise the ascending sort.
	for _, date := range []time.Time{second, first} {
		occurrence := testfixtures.NewOccurrenceFixture(pattern, testfixtures.WithOccurrenceDate(date))
		if err := occurrences.CreateOccurrence(ctx, occurrence); err != nil {
			t.Fatalf("CreateOccurrence returned error: %v", err)
		}
	}

	dates, err := occurrences.ListMaterializedDates(ctx, pattern.ID)
	if err != nil {
		t.Fatalf("ListMaterializedDates returned error: %v", err)
	}
	if len(dates) != 2 || !dates[0].Equal(first) || !dates[1].Equal(second) {
		t.Fatalf("unexpected dates: %v", dates)
	}

	rides, err := occurrences.ListOccurrencesForPattern(ctx, pattern.ID)
	if err != nil {
		t.Fatalf("ListOccurrencesForPattern returned error: %v", err)
	}
	if len(rides) != 2 {
		t.Fatalf("expected two occurrences, got %d", len(rides))
	}
	if !rides[0].DepartureAt.Before(rides[1].DepartureAt) {
		t.Fatalf("occurrences not ordered by departure: %v, %v", rides[0].DepartureAt, rides[1].DepartureAt)
	}
	if rides[0].PatternID == nil || *rides[0].PatternID != pattern.ID {
		t.Fatalf("pattern reference lost: %v", rides[0].PatternID)
	}
	if rides[0].Origin != pattern.Origin || rides[0].Seats != pattern.Seats {
		t.Fatalf("template copy mismatch: %+v", rides[0])
	}
}

func TestOccurrenceRepository_DuplicateDateRejected(t *testing.T) {
	pool := testfixtures.OpenSQLite(t)
	patterns := sqlite.NewPatternRepository(pool)
	occurrences := sqlite.NewOccurrenceRepository(pool)
	ctx := context.Background()

	pattern := testfixtures.NewPatternFixture()
	if err := patterns.CreatePattern(ctx, pattern); err != nil {
		t.Fatalf("CreatePattern returned error: %v", err)
	}

	date := time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC)
	if err := occurrences.CreateOccurrence(ctx, testfixtures.NewOccurrenceFixture(pattern, testfixtures.WithOccurrenceDate(date))); err != nil {
		t.Fatalf("CreateOccurrence returned error: %v", err)
	}

	err := occurrences.CreateOccurrence(ctx, testfixtures.NewOccurrenceFixture(pattern, testfixtures.WithOccurrenceDate(date)))
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
	}
}

func TestOccurrenceRepository_RejectsUnknownPatternReference(t *testing.T) {
	pool := testfixtures.OpenSQLite(t)
	occurrences := sqlite.NewOccurrenceRepository(pool)

	// The fixture pattern is never persisted, so the reference dangles.
	occurrence := testfixtures.NewOccurrenceFixture(testfixtures.NewPatternFixture())
	if err := occurrences.CreateOccurrence(context.Background(), occurrence); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected persistence.ErrForeignKeyViolation, got %v", err)
	}
}

func TestOccurrenceRepository_DetachedRidesShareDates(t *testing.T) {
	pool := testfixtures.OpenSQLite(t)
	occurrences := sqlite.NewOccurrenceRepository(pool)
	ctx := context.Background()

	// Fallback rides carry no pattern reference, so the unique index must
	// not collide when two of them land on the same date.
	date := time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		occurrence := testfixtures.NewOccurrenceFixture(
			testfixtures.NewPatternFixture(),
			testfixtures.WithOccurrenceDate(date),
			testfixtures.WithoutPattern(),
		)
		if err := occurrences.CreateOccurrence(ctx, occurrence); err != nil {
			t.Fatalf("CreateOccurrence returned error: %v", err)
		}
	}
}

func TestOccurrenceRepository_StoreUnavailableWithoutSchema(t *testing.T) {
	pool := testfixtures.OpenUnmigratedSQLite(t)
	occurrences := sqlite.NewOccurrenceRepository(pool)

	occurrence := testfixtures.NewOccurrenceFixture(testfixtures.NewPatternFixture(), testfixtures.WithoutPattern())
	if err := occurrences.CreateOccurrence(context.Background(), occurrence); !errors.Is(err, persistence.ErrStoreUnavailable) {
		t.Fatalf("expected persistence.ErrStoreUnavailable, got %v", err)
	}
}

func TestOccurrenceRepository_ListForUnknownPattern(t *testing.T) {
	pool := testfixtures.OpenSQLite(t)
	occurrences := sqlite.NewOccurrenceRepository(pool)

	dates, err := occurrences.ListMaterializedDates(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ListMaterializedDates returned error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("expected no dates, got %v", dates)
	}
}
