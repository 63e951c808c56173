package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/rideshare-scheduler/internal/persistence"
	"github.com/example/rideshare-scheduler/internal/recurrence"
)

// DefaultHorizonDays is the rolling window for which occurrences are eagerly
// materialized when the caller does not specify one.
const DefaultHorizonDays = 30

// maxOccurrenceLimit caps count bound patterns at creation time.
const maxOccurrenceLimit = 100

// PatternStore captures the pattern persistence interactions needed by the
// materializer.
type PatternStore interface {
	CreatePattern(ctx context.Context, pattern persistence.RecurrencePattern) error
	GetPattern(ctx context.Context, id string) (persistence.RecurrencePattern, error)
	UpdatePatternProgress(ctx context.Context, id string, occurrencesCreated int, isActive bool) error
}

// OccurrenceStore captures the occurrence persistence interactions needed by
// the materializer.
type OccurrenceStore interface {
	CreateOccurrence(ctx context.Context, occurrence persistence.RideOccurrence) error
	ListMaterializedDates(ctx context.Context, patternID string) ([]time.Time, error)
}

// MaterializerService turns recurrence patterns into persisted ride
// instances over a rolling horizon.
type MaterializerService struct {
	patterns    PatternStore
	occurrences OccurrenceStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMaterializerService wires dependencies for materialization operations.
func NewMaterializerService(patterns PatternStore, occurrences OccurrenceStore, idGenerator func() string, now func() time.Time) *MaterializerService {
	return NewMaterializerServiceWithLogger(patterns, occurrences, idGenerator, now, nil)
}

// NewMaterializerServiceWithLogger wires dependencies including a logger.
func NewMaterializerServiceWithLogger(patterns PatternStore, occurrences OccurrenceStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MaterializerService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MaterializerService{
		patterns:    patterns,
		occurrences: occurrences,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateRecurringSchedule validates the pattern input, persists the pattern
// and eagerly materializes occurrences inside the horizon.
//
// When the pattern store reports persistence.ErrStoreUnavailable the call
// degrades instead of failing: exactly one non-recurring ride is created at
// the first computed occurrence date and the result carries a nil PatternID.
// Posting a ride never silently fails on an unreachable recurrence store.
//
// Individual occurrence failures after the pattern was persisted are logged
// and skipped; a later ExtendHorizon call retries the missing dates.
func (s *MaterializerService) CreateRecurringSchedule(ctx context.Context, params CreateScheduleParams) (CreateScheduleResult, error) {
	if s == nil {
		return CreateScheduleResult{}, fmt.Errorf("MaterializerService is nil")
	}

	today := recurrence.DateOnly(s.now())
	horizonDays := params.HorizonDays
	if horizonDays == 0 {
		horizonDays = DefaultHorizonDays
	}

	vErr := &ValidationError{}
	validatePatternInput(params.Input, today, vErr)
	validateRideTemplate(params.Template, vErr)
	if horizonDays < 1 || horizonDays > 365 {
		vErr.add("horizon_days", "horizon must be between 1 and 365 days")
	}
	if vErr.HasErrors() {
		return CreateScheduleResult{}, vErr
	}

	logger := serviceLogger(ctx, s.logger, "create_recurring_schedule", "driver_id", params.Template.DriverID)

	patternID := s.idGenerator()
	pattern := buildPattern(patternID, params.Input)
	record := buildPatternRecord(patternID, params.Input, params.Template)

	if err := s.patterns.CreatePattern(ctx, record); err != nil {
		if errors.Is(err, persistence.ErrStoreUnavailable) {
			logger.Warn("recurrence store unavailable, falling back to single ride", "error", err)
			return s.createFallbackRide(ctx, logger, pattern, params.Template, today)
		}
		return CreateScheduleResult{}, fmt.Errorf("failed to persist pattern: %w", err)
	}

	horizonEnd := today.AddDate(0, 0, horizonDays)
	dates := recurrence.OccurrencesInRange(pattern, today, horizonEnd)

	created := 0
	var lastCreated time.Time
	for _, date := range dates {
		occurrence := s.buildOccurrence(&patternID, params.Template, pattern.Departure, date)
		if err := s.occurrences.CreateOccurrence(ctx, occurrence); err != nil {
			// Non-fatal: the pattern is durable, ExtendHorizon retries the date.
			logger.Warn("failed to create occurrence",
				"pattern_id", patternID,
				"occurrence_date", date.Format(time.DateOnly),
				"error_kind", ErrorKind(err),
				"error", err,
			)
			continue
		}
		created++
		lastCreated = date
	}

	pattern.OccurrencesCreated = created
	active := s.patternStillActive(pattern, horizonEnd, lastCreated)

	if err := s.patterns.UpdatePatternProgress(ctx, patternID, created, active); err != nil {
		// The pattern and occurrences exist; the counter catches up on the
		// next extension.
		logger.Warn("failed to update pattern progress", "pattern_id", patternID, "error", err)
	}

	logger.Info("recurring schedule created", "pattern_id", patternID, "created_count", created, "active", active)

	return CreateScheduleResult{PatternID: &patternID, CreatedCount: created}, nil
}

// ExtendHorizon re-materializes a pattern over a fresh horizon measured from
// today. Dates already persisted are skipped, which makes concurrent or
// repeated calls convergent: the final occurrence set is identical and the
// repeat call reports CreatedCount zero.
func (s *MaterializerService) ExtendHorizon(ctx context.Context, patternID string, horizonDays int) (ExtendResult, error) {
	if s == nil {
		return ExtendResult{}, fmt.Errorf("MaterializerService is nil")
	}
	if horizonDays == 0 {
		horizonDays = DefaultHorizonDays
	}
	if horizonDays < 1 || horizonDays > 365 {
		vErr := &ValidationError{}
		vErr.add("horizon_days", "horizon must be between 1 and 365 days")
		return ExtendResult{}, vErr
	}

	logger := serviceLogger(ctx, s.logger, "extend_horizon", "pattern_id", patternID)

	record, err := s.patterns.GetPattern(ctx, patternID)
	if err != nil {
		return ExtendResult{}, mapPatternStoreError(err)
	}

	if !record.IsActive {
		return ExtendResult{CreatedCount: 0}, nil
	}

	pattern := patternFromRecord(record)
	template := templateFromRecord(record)

	today := recurrence.DateOnly(s.now())
	horizonEnd := today.AddDate(0, 0, horizonDays)

	materialized, err := s.occurrences.ListMaterializedDates(ctx, patternID)
	if err != nil {
		return ExtendResult{}, fmt.Errorf("failed to list materialized dates: %w", err)
	}
	existing := make(map[time.Time]struct{}, len(materialized))
	for _, date := range materialized {
		existing[recurrence.DateOnly(date)] = struct{}{}
	}

	// Enumerate candidates without the count cap: dates already materialized
	// are part of the spent budget, so the cap applies to new creations only.
	enumeration := pattern
	enumeration.OccurrencesCreated = 0
	candidates := recurrence.OccurrencesInRange(enumeration, today, horizonEnd)

	// The stored counter lags when a progress write failed after
	// materialization. The persisted dates are ground truth for the spent
	// budget, so reconcile before computing what is left.
	base := record.OccurrencesCreated
	if len(existing) > base {
		base = len(existing)
	}
	pattern.OccurrencesCreated = base

	remaining := pattern.RemainingOccurrences()

	created := 0
	var lastCreated time.Time
	for _, date := range candidates {
		if _, ok := existing[date]; ok {
			continue
		}
		if remaining >= 0 && created >= remaining {
			break
		}
		occurrence := s.buildOccurrence(&record.ID, template, pattern.Departure, date)
		if err := s.occurrences.CreateOccurrence(ctx, occurrence); err != nil {
			if errors.Is(err, persistence.ErrDuplicate) {
				// A racing extension materialized the date first; both calls
				// converge on the same occurrence set.
				continue
			}
			logger.Warn("failed to create occurrence",
				"occurrence_date", date.Format(time.DateOnly),
				"error_kind", ErrorKind(err),
				"error", err,
			)
			continue
		}
		created++
		lastCreated = date
	}

	total := base + created
	pattern.OccurrencesCreated = total
	active := s.patternStillActive(pattern, horizonEnd, lastCreated)

	if total != record.OccurrencesCreated || !active {
		if err := s.patterns.UpdatePatternProgress(ctx, patternID, total, active); err != nil {
			logger.Warn("failed to update pattern progress", "error", err)
		}
	}

	if created > 0 {
		logger.Info("horizon extended", "created_count", created, "active", active)
	}

	return ExtendResult{CreatedCount: created}, nil
}

// CancelPattern deactivates a pattern on behalf of its owning driver.
// Deactivation is terminal; cancelling an already inactive pattern is a
// no-op. Occurrences that were already materialized are left untouched,
// their lifecycle belongs to the ride management workflow.
func (s *MaterializerService) CancelPattern(ctx context.Context, patternID, actingDriverID string) error {
	if s == nil {
		return fmt.Errorf("MaterializerService is nil")
	}

	record, err := s.patterns.GetPattern(ctx, patternID)
	if err != nil {
		return mapPatternStoreError(err)
	}

	if record.DriverID != actingDriverID {
		return fmt.Errorf("%w: pattern belongs to another driver", ErrUnauthorized)
	}

	if !record.IsActive {
		return nil
	}

	if err := s.patterns.UpdatePatternProgress(ctx, patternID, record.OccurrencesCreated, false); err != nil {
		return fmt.Errorf("failed to deactivate pattern: %w", err)
	}

	serviceLogger(ctx, s.logger, "cancel_pattern", "pattern_id", patternID).Info("pattern cancelled")
	return nil
}

// DescribePattern renders the stored pattern's recurrence rule for display.
func (s *MaterializerService) DescribePattern(ctx context.Context, patternID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("MaterializerService is nil")
	}

	record, err := s.patterns.GetPattern(ctx, patternID)
	if err != nil {
		return "", mapPatternStoreError(err)
	}

	return recurrence.Describe(patternFromRecord(record)), nil
}

// createFallbackRide creates exactly one non-recurring ride at the first
// computed occurrence date. The pattern itself was never persisted, so the
// occurrence carries no pattern reference.
func (s *MaterializerService) createFallbackRide(ctx context.Context, logger *slog.Logger, pattern recurrence.Pattern, template RideTemplate, today time.Time) (CreateScheduleResult, error) {
	first, ok := recurrence.NextOccurrence(pattern, today)
	if !ok {
		// Validation guarantees at least one occurrence; stay defensive.
		logger.Warn("fallback found no occurrence date")
		return CreateScheduleResult{CreatedCount: 0, Fallback: true}, nil
	}

	occurrence := s.buildOccurrence(nil, template, pattern.Departure, first)
	if err := s.occurrences.CreateOccurrence(ctx, occurrence); err != nil {
		return CreateScheduleResult{}, fmt.Errorf("failed to create fallback ride: %w", err)
	}

	logger.Info("fallback ride created", "occurrence_date", first.Format(time.DateOnly))
	return CreateScheduleResult{CreatedCount: 1, Fallback: true}, nil
}

func (s *MaterializerService) buildOccurrence(patternID *string, template RideTemplate, departure recurrence.TimeOfDay, date time.Time) persistence.RideOccurrence {
	var notes *string
	if template.Notes != nil {
		copied := *template.Notes
		notes = &copied
	}
	return persistence.RideOccurrence{
		ID:             s.idGenerator(),
		PatternID:      patternID,
		DriverID:       template.DriverID,
		Origin:         template.Origin,
		Destination:    template.Destination,
		Seats:          template.Seats,
		Notes:          notes,
		OccurrenceDate: date,
		DepartureAt:    departure.On(date),
	}
}

// patternStillActive decides whether a pattern can still produce occurrences
// after a materialization pass that reached horizonEnd.
func (s *MaterializerService) patternStillActive(pattern recurrence.Pattern, horizonEnd, lastCreated time.Time) bool {
	if pattern.RemainingOccurrences() == 0 {
		return false
	}

	// A date bound pattern whose window is fully inside the horizon has
	// nothing left to generate.
	resume := horizonEnd
	if lastCreated.After(resume) {
		resume = lastCreated
	}
	_, more := recurrence.NextOccurrence(pattern, resume.AddDate(0, 0, 1))
	if !more && pattern.End.Kind == recurrence.EndConditionOnDate {
		return false
	}

	return true
}

func validatePatternInput(input PatternInput, today time.Time, vErr *ValidationError) {
	switch recurrence.PatternType(input.PatternType) {
	case recurrence.PatternDaily:
	case recurrence.PatternWeekly:
		if len(input.Weekdays) == 0 {
			vErr.add("weekdays", "weekly patterns require at least one weekday")
		}
		for _, day := range input.Weekdays {
			if day < 0 || day > 6 {
				vErr.add("weekdays", "weekdays must be between 0 (Sunday) and 6 (Saturday)")
				break
			}
		}
	case recurrence.PatternMonthly:
		if input.DayOfMonth < 1 || input.DayOfMonth > 28 {
			vErr.add("day_of_month", "day of month must be between 1 and 28")
		}
	default:
		vErr.add("pattern_type", "pattern type must be daily, weekly or monthly")
	}

	if input.StartDate.IsZero() {
		vErr.add("start_date", "start date is required")
	} else if recurrence.DateOnly(input.StartDate).Before(today) {
		vErr.add("start_date", "start date cannot be in the past")
	}

	switch input.EndType {
	case EndTypeNever, "":
	case EndTypeOnDate:
		if input.EndDate == nil {
			vErr.add("end_date", "end date is required for a date bound pattern")
		} else {
			endDate := recurrence.DateOnly(*input.EndDate)
			if endDate.Before(today) {
				vErr.add("end_date", "end date cannot be in the past")
			}
			if !input.StartDate.IsZero() && endDate.Before(recurrence.DateOnly(input.StartDate)) {
				vErr.add("end_date", "end date cannot precede the start date")
			}
		}
	case EndTypeAfterCount:
		if input.MaxOccurrences == nil {
			vErr.add("max_occurrences", "occurrence count is required for a count bound pattern")
		} else if *input.MaxOccurrences < 1 || *input.MaxOccurrences > maxOccurrenceLimit {
			vErr.add("max_occurrences", fmt.Sprintf("occurrence count must be between 1 and %d", maxOccurrenceLimit))
		}
	default:
		vErr.add("end_type", "end type must be never, on_date or after_count")
	}

	if input.DepartureHour < 0 || input.DepartureHour > 23 {
		vErr.add("departure_hour", "departure hour must be between 0 and 23")
	}
	if input.DepartureMinute < 0 || input.DepartureMinute > 59 {
		vErr.add("departure_minute", "departure minute must be between 0 and 59")
	}
}

func validateRideTemplate(template RideTemplate, vErr *ValidationError) {
	if template.DriverID == "" {
		vErr.add("driver_id", "driver is required")
	}
	if template.Origin == "" {
		vErr.add("origin", "origin is required")
	}
	if template.Destination == "" {
		vErr.add("destination", "destination is required")
	}
	if template.Seats < 1 {
		vErr.add("seats", "at least one seat is required")
	}
}

func buildPattern(id string, input PatternInput) recurrence.Pattern {
	weekdays := make([]time.Weekday, 0, len(input.Weekdays))
	for _, day := range input.Weekdays {
		weekdays = append(weekdays, time.Weekday(day))
	}

	end := recurrence.NeverEnds()
	switch input.EndType {
	case EndTypeOnDate:
		if input.EndDate != nil {
			end = recurrence.EndsOn(*input.EndDate)
		}
	case EndTypeAfterCount:
		if input.MaxOccurrences != nil {
			end = recurrence.EndsAfter(*input.MaxOccurrences)
		}
	}

	return recurrence.Pattern{
		ID:         id,
		Type:       recurrence.PatternType(input.PatternType),
		Weekdays:   weekdays,
		DayOfMonth: input.DayOfMonth,
		StartDate:  recurrence.DateOnly(input.StartDate),
		End:        end,
		Active:     true,
		Departure:  recurrence.TimeOfDay{Hour: input.DepartureHour, Minute: input.DepartureMinute},
	}
}

func buildPatternRecord(id string, input PatternInput, template RideTemplate) persistence.RecurrencePattern {
	weekdays := make([]time.Weekday, 0, len(input.Weekdays))
	for _, day := range input.Weekdays {
		weekdays = append(weekdays, time.Weekday(day))
	}

	record := persistence.RecurrencePattern{
		ID:              id,
		DriverID:        template.DriverID,
		PatternType:     input.PatternType,
		Weekdays:        weekdays,
		DayOfMonth:      input.DayOfMonth,
		StartDate:       recurrence.DateOnly(input.StartDate),
		IsActive:        true,
		DepartureHour:   input.DepartureHour,
		DepartureMinute: input.DepartureMinute,
		Origin:          template.Origin,
		Destination:     template.Destination,
		Seats:           template.Seats,
	}

	if template.Notes != nil {
		copied := *template.Notes
		record.Notes = &copied
	}

	switch input.EndType {
	case EndTypeOnDate:
		if input.EndDate != nil {
			endDate := recurrence.DateOnly(*input.EndDate)
			record.EndDate = &endDate
		}
	case EndTypeAfterCount:
		if input.MaxOccurrences != nil {
			max := *input.MaxOccurrences
			record.MaxOccurrences = &max
		}
	}

	return record
}

// patternFromRecord converts a stored pattern into its calculator form.
func patternFromRecord(record persistence.RecurrencePattern) recurrence.Pattern {
	end := recurrence.NeverEnds()
	switch {
	case record.EndDate != nil:
		end = recurrence.EndsOn(*record.EndDate)
	case record.MaxOccurrences != nil:
		end = recurrence.EndsAfter(*record.MaxOccurrences)
	}

	return recurrence.Pattern{
		ID:                 record.ID,
		Type:               recurrence.PatternType(record.PatternType),
		Weekdays:           record.Weekdays,
		DayOfMonth:         record.DayOfMonth,
		StartDate:          recurrence.DateOnly(record.StartDate),
		End:                end,
		OccurrencesCreated: record.OccurrencesCreated,
		Active:             record.IsActive,
		Departure:          recurrence.TimeOfDay{Hour: record.DepartureHour, Minute: record.DepartureMinute},
	}
}

func templateFromRecord(record persistence.RecurrencePattern) RideTemplate {
	var notes *string
	if record.Notes != nil {
		copied := *record.Notes
		notes = &copied
	}
	return RideTemplate{
		DriverID:    record.DriverID,
		Origin:      record.Origin,
		Destination: record.Destination,
		Seats:       record.Seats,
		Notes:       notes,
	}
}

func mapPatternStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
