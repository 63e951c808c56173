package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record with the same identity already
	// exists, including an occurrence for an already materialized date.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a record violates a schema
	// level check constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a record references a missing
	// parent row.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrStoreUnavailable is returned when the recurrence storage itself is
	// structurally missing, as opposed to a transient I/O failure. Callers
	// use it to degrade to single ride creation.
	ErrStoreUnavailable = errors.New("persistence: store unavailable")
)
