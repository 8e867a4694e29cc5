package ingest

import (
	"errors"
	"fmt"
)

// ============================================================================
// ERRORS — Fatal Input-Schema Failures
// ============================================================================
// Only structural problems abort ingestion. Bad individual values never do;
// they are coerced to null or sentinel by the normalizer.
// ============================================================================

// ErrNoValidTimestamps is returned when the shutdown timestamp column exists
// but not a single value parses; there is nothing to impute from.
var ErrNoValidTimestamps = errors.New("shutdown timestamp column contains no parsable dates")

// MissingColumnError reports a structurally required column absent from the
// source. Ingestion cannot proceed without the shutdown timestamp or the
// downtime duration.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q is missing from the source file", e.Column)
}

// IsSchemaError reports whether err is a fatal input-schema failure.
func IsSchemaError(err error) bool {
	var missing *MissingColumnError
	return errors.As(err, &missing) || errors.Is(err, ErrNoValidTimestamps)
}
