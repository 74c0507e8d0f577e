/*
store.go - Persistence interfaces for intervals and requests

PURPOSE:
  Defines the boundary between the domain logic and the database. The
  ledger itself is pure; the RequestService uses these interfaces to load
  interval history and persist the request lifecycle.

KEY INTERFACES:
  IntervalStore: Work-interval log (the ledger's raw input)
  RequestStore:  Compensation-request records (the approval workflow)
  Store:         Both, as implemented by a single backend

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - comp/store:   In-memory for testing/dev

DUPLICATE-DAY BACKSTOP:
  SaveInterval must return ErrDuplicateUsageDay when a second
  compensation-used interval lands on a day that already has one for the
  same user. The service validates this before writing, but the store
  constraint closes the race between concurrent writers.
*/
package comp

import (
	"context"
	"time"
)

// =============================================================================
// INTERVAL STORE - The work-interval log
// =============================================================================

type IntervalStore interface {
	// SaveInterval persists a new interval.
	SaveInterval(ctx context.Context, iv WorkInterval) error

	// UpdateInterval replaces an existing interval by ID.
	UpdateInterval(ctx context.Context, iv WorkInterval) error

	// DeleteInterval removes an interval (used when a pending request is
	// rejected or cancelled, releasing its hold on the balance).
	DeleteInterval(ctx context.Context, id IntervalID) error

	// GetInterval returns an interval by ID.
	GetInterval(ctx context.Context, id IntervalID) (*WorkInterval, error)

	// IntervalsByUser returns the user's full interval history,
	// ordered by start time.
	IntervalsByUser(ctx context.Context, userID UserID) ([]WorkInterval, error)

	// IntervalsInRange returns the user's intervals starting within the
	// period, ordered by start time.
	IntervalsInRange(ctx context.Context, userID UserID, period Period) ([]WorkInterval, error)

	// UsageDates returns the calendar days on which the user already has a
	// compensation-used interval, regardless of approval state.
	UsageDates(ctx context.Context, userID UserID) ([]time.Time, error)
}

// =============================================================================
// REQUEST STORE - Approval workflow records
// =============================================================================

type RequestStore interface {
	// SaveRequest persists a new compensation request.
	SaveRequest(ctx context.Context, req CompRequest) error

	// UpdateRequest replaces an existing request by ID.
	UpdateRequest(ctx context.Context, req CompRequest) error

	// GetRequest returns a request by ID.
	GetRequest(ctx context.Context, id RequestID) (*CompRequest, error)

	// RequestsByUser returns all requests for a user, newest first.
	RequestsByUser(ctx context.Context, userID UserID) ([]CompRequest, error)

	// PendingRequests returns all requests awaiting review, oldest first.
	PendingRequests(ctx context.Context) ([]CompRequest, error)
}

// Store is the full persistence surface the RequestService needs.
type Store interface {
	IntervalStore
	RequestStore
}
