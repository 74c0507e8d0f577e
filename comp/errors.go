/*
errors.go - Centralized error types for the compensation engine

PURPOSE:
  All error types in one place. The API layer maps these to HTTP statuses;
  expected rejections (validation failures) travel as RequestRejectedError
  so callers can recover the structured Decision with errors.As.

ERROR CATEGORIES:
  1. Not-found errors - Missing requests or intervals
  2. Lifecycle errors - Acting on a request in the wrong status
  3. Rejection errors - Usage request failed validation
  4. Store errors - Persistence-level failures
*/
package comp

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrIntervalNotFound is returned when a referenced interval doesn't exist.
	ErrIntervalNotFound = errors.New("interval not found")

	// ErrRequestNotPending is returned when approving, rejecting, cancelling,
	// or updating a request that has already left the pending state.
	ErrRequestNotPending = errors.New("request is not pending")

	// ErrRequestRejected is the sentinel wrapped by RequestRejectedError.
	ErrRequestRejected = errors.New("request rejected")

	// ErrDuplicateUsageDay is returned by stores when a second usage interval
	// lands on a day that already has one. Backstop for the validation-layer
	// duplicate check under concurrent writers.
	ErrDuplicateUsageDay = errors.New("usage already recorded for this day")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// RequestRejectedError carries the validation Decision for a rejected
// usage request.
type RequestRejectedError struct {
	Decision Decision
}

func (e *RequestRejectedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Decision.Code, e.Decision.Message)
}

func (e *RequestRejectedError) Unwrap() error { return ErrRequestRejected }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// rather than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrRequestRejected) ||
		errors.Is(err, ErrRequestNotPending) ||
		errors.Is(err, ErrDuplicateUsageDay)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrIntervalNotFound)
}
