/*
errors.go - Centralized error types for the settlement engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (the API layer) classify errors with the helpers below.

ERROR CATEGORIES:
  1. Validation errors - bad input, abort the whole invocation
  2. Not-found errors - missing records
  3. Storage errors - wrapped and surfaced as-is

USAGE:
  if settlement.IsValidation(err) {
      // respond 400
  }
*/
package settlement

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a resolved period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrNegativeDuration is returned when a segment ends before it starts.
	// This is a hard validation error, never silently zeroed.
	ErrNegativeDuration = errors.New("segment has negative duration")

	// ErrInvalidFilter is returned for an unknown classification filter value.
	ErrInvalidFilter = errors.New("remittance status filter must be REMITTED or UNREMITTED")

	// ErrInvalidStatus is returned for an unknown remittance status override.
	ErrInvalidStatus = errors.New("invalid remittance status")

	// ErrWorkLogNotFound is returned when a worklog lookup misses.
	ErrWorkLogNotFound = errors.New("worklog not found")

	// ErrTaskNotFound is returned when a task lookup misses.
	ErrTaskNotFound = errors.New("task not found")

	// ErrSegmentNotFound is returned when a segment lookup misses.
	ErrSegmentNotFound = errors.New("time segment not found")

	// ErrAdjustmentNotFound is returned when an adjustment lookup misses.
	ErrAdjustmentNotFound = errors.New("adjustment not found")

	// ErrRemittanceNotFound is returned when a remittance lookup misses.
	ErrRemittanceNotFound = errors.New("remittance not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NegativeDurationError identifies the offending segment.
type NegativeDurationError struct {
	SegmentID SegmentID
	Start     time.Time
	End       time.Time
}

func (e *NegativeDurationError) Error() string {
	return fmt.Sprintf("segment %s has negative duration (%s before %s)",
		e.SegmentID, e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}

func (e *NegativeDurationError) Unwrap() error { return ErrNegativeDuration }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is due to invalid input.
// Validation errors abort the whole invocation with no state change.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrNegativeDuration) ||
		errors.Is(err, ErrInvalidFilter) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkLogNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrSegmentNotFound) ||
		errors.Is(err, ErrAdjustmentNotFound) ||
		errors.Is(err, ErrRemittanceNotFound)
}
