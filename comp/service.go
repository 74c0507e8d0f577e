/*
service.go - Compensation-request lifecycle

PURPOSE:
  Orchestrates usage requests around the pure ledger: create (validate and
  hold balance), approve, reject, cancel, update. Each action has its own
  explicit input struct instead of a duck-typed payload.

REQUEST FLOW:
  Create  -> persists a compensation-used interval (Approved=false)
             plus a CompRequest record in status "pending"
  Approve -> flips the interval to approved, stamps the reviewer
  Reject  -> deletes the held interval, records the reviewer's note
  Cancel  -> deletes the held interval (requester withdrew)
  Update  -> re-validates new date/hours, rewrites the held interval

CONCURRENCY:
  Two simultaneous requests against the same balance must not both be
  accepted (double-spend). The service serializes validate-and-write per
  user with a keyed mutex; the store's unique usage-day constraint is the
  backstop. Different users never contend.

SEE ALSO:
  - validate.go: The rules applied on create/update
  - store.go: Persistence interfaces
*/
package comp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// COMP REQUEST - Workflow record
// =============================================================================

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// CompRequest is one compensation-leave request and its review state.
// The held hours live in the linked work interval; the request record
// carries the workflow metadata.
type CompRequest struct {
	ID     RequestID
	UserID UserID

	Date  time.Time
	Hours Amount

	Status RequestStatus
	Reason string

	// Review metadata, set on approve/reject.
	ReviewedBy *string
	ReviewedAt *time.Time
	ReviewNote *string

	// The compensation-used interval holding the hours.
	IntervalID IntervalID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// ACTION INPUTS - One explicit struct per operation
// =============================================================================

// CreateUsage asks to spend compensation hours on a single day.
type CreateUsage struct {
	UserID UserID
	Date   time.Time
	Hours  Amount
	Reason string
}

// ApproveAction approves a pending request.
type ApproveAction struct {
	RequestID  RequestID
	ReviewerID string
}

// RejectAction rejects a pending request with a note for the requester.
type RejectAction struct {
	RequestID  RequestID
	ReviewerID string
	Note       string
}

// CancelAction withdraws a pending request.
type CancelAction struct {
	RequestID RequestID
}

// UpdateAction changes the date and/or hours of a pending request.
// Nil fields keep the current value.
type UpdateAction struct {
	RequestID RequestID
	NewDate   *time.Time
	NewHours  *Amount
}

// =============================================================================
// REQUEST SERVICE
// =============================================================================

// RequestService runs the request lifecycle against a Store.
type RequestService struct {
	store  Store
	ledger *Ledger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	locks map[UserID]*sync.Mutex
}

func NewRequestService(store Store, ledger *Ledger) *RequestService {
	return &RequestService{
		store:  store,
		ledger: ledger,
		Now:    time.Now,
		locks:  make(map[UserID]*sync.Mutex),
	}
}

// Ledger exposes the underlying ledger (for read-only balance endpoints).
func (s *RequestService) Ledger() *Ledger { return s.ledger }

// userLock returns the mutex serializing validate-and-write for one user.
func (s *RequestService) userLock(userID UserID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// =============================================================================
// BALANCE QUERIES
// =============================================================================

// BalanceFor recomputes the user's balance from stored interval history.
// A zero period means full history.
func (s *RequestService) BalanceFor(ctx context.Context, userID UserID, period Period) (Balance, error) {
	intervals, err := s.loadIntervals(ctx, userID, period)
	if err != nil {
		return Balance{}, fmt.Errorf("load intervals: %w", err)
	}
	return s.ledger.ComputeBalance(userID, intervals), nil
}

func (s *RequestService) loadIntervals(ctx context.Context, userID UserID, period Period) ([]WorkInterval, error) {
	if period.IsZero() {
		return s.store.IntervalsByUser(ctx, userID)
	}
	return s.store.IntervalsInRange(ctx, userID, period)
}

// =============================================================================
// CREATE
// =============================================================================

// CreateRequest validates a new usage request against the recomputed
// balance and, when accepted, persists the held interval and the request
// record. Rejections come back as *RequestRejectedError.
func (s *RequestService) CreateRequest(ctx context.Context, in CreateUsage) (*CompRequest, error) {
	lock := s.userLock(in.UserID)
	lock.Lock()
	defer lock.Unlock()

	decision, err := s.validate(ctx, in.UserID, UsageRequest{
		UserID: in.UserID,
		Date:   in.Date,
		Hours:  in.Hours,
		Reason: in.Reason,
	}, "")
	if err != nil {
		return nil, err
	}
	if !decision.Accepted {
		return nil, &RequestRejectedError{Decision: decision}
	}

	now := s.Now()
	interval := usageInterval(NewIntervalID(now), in.UserID, in.Date, in.Hours, in.Reason, now)
	if err := s.store.SaveInterval(ctx, interval); err != nil {
		return nil, fmt.Errorf("save usage interval: %w", err)
	}

	req := CompRequest{
		ID:         NewRequestID(now),
		UserID:     in.UserID,
		Date:       DayOf(in.Date),
		Hours:      in.Hours,
		Status:     StatusPending,
		Reason:     in.Reason,
		IntervalID: interval.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("save request: %w", err)
	}

	return &req, nil
}

// validate recomputes the balance and runs the usage rules.
// excludeInterval removes the request's own held interval from both the
// balance and the duplicate-date check (used by Update).
func (s *RequestService) validate(ctx context.Context, userID UserID, req UsageRequest, excludeInterval IntervalID) (Decision, error) {
	intervals, err := s.store.IntervalsByUser(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("load intervals: %w", err)
	}

	var usageDates []time.Time
	considered := intervals[:0:0]
	for _, iv := range intervals {
		if iv.ID == excludeInterval {
			continue
		}
		considered = append(considered, iv)
		if iv.Type == WorkCompensation {
			usageDates = append(usageDates, DayOf(iv.Start))
		}
	}

	balance := s.ledger.ComputeBalance(userID, considered)
	return s.ledger.ValidateUsageRequest(balance, req, usageDates, s.Now()), nil
}

// =============================================================================
// REVIEW ACTIONS
// =============================================================================

// Approve approves a pending request and marks its interval approved.
func (s *RequestService) Approve(ctx context.Context, in ApproveAction) (*CompRequest, error) {
	req, err := s.pendingRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	interval, err := s.store.GetInterval(ctx, req.IntervalID)
	if err != nil {
		return nil, fmt.Errorf("load held interval: %w", err)
	}
	interval.Approved = true
	if err := s.store.UpdateInterval(ctx, *interval); err != nil {
		return nil, fmt.Errorf("approve interval: %w", err)
	}

	now := s.Now()
	req.Status = StatusApproved
	req.ReviewedBy = &in.ReviewerID
	req.ReviewedAt = &now
	req.UpdatedAt = now
	if err := s.store.UpdateRequest(ctx, *req); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	return req, nil
}

// Reject rejects a pending request and releases its held interval.
func (s *RequestService) Reject(ctx context.Context, in RejectAction) (*CompRequest, error) {
	req, err := s.pendingRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteInterval(ctx, req.IntervalID); err != nil {
		return nil, fmt.Errorf("release held interval: %w", err)
	}

	now := s.Now()
	req.Status = StatusRejected
	req.ReviewedBy = &in.ReviewerID
	req.ReviewedAt = &now
	if in.Note != "" {
		req.ReviewNote = &in.Note
	}
	req.UpdatedAt = now
	if err := s.store.UpdateRequest(ctx, *req); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	return req, nil
}

// Cancel withdraws a pending request and releases its held interval.
func (s *RequestService) Cancel(ctx context.Context, in CancelAction) (*CompRequest, error) {
	req, err := s.pendingRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteInterval(ctx, req.IntervalID); err != nil {
		return nil, fmt.Errorf("release held interval: %w", err)
	}

	req.Status = StatusCancelled
	req.UpdatedAt = s.Now()
	if err := s.store.UpdateRequest(ctx, *req); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	return req, nil
}

// Update changes the date and/or hours of a pending request after
// re-validating against the balance with the request's own hold excluded.
func (s *RequestService) Update(ctx context.Context, in UpdateAction) (*CompRequest, error) {
	req, err := s.pendingRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	lock := s.userLock(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	date := req.Date
	if in.NewDate != nil {
		date = DayOf(*in.NewDate)
	}
	hours := req.Hours
	if in.NewHours != nil {
		hours = *in.NewHours
	}

	decision, err := s.validate(ctx, req.UserID, UsageRequest{
		UserID: req.UserID,
		Date:   date,
		Hours:  hours,
		Reason: req.Reason,
	}, req.IntervalID)
	if err != nil {
		return nil, err
	}
	if !decision.Accepted {
		return nil, &RequestRejectedError{Decision: decision}
	}

	now := s.Now()
	interval := usageInterval(req.IntervalID, req.UserID, date, hours, req.Reason, now)
	if err := s.store.UpdateInterval(ctx, interval); err != nil {
		return nil, fmt.Errorf("update held interval: %w", err)
	}

	req.Date = date
	req.Hours = hours
	req.UpdatedAt = now
	if err := s.store.UpdateRequest(ctx, *req); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	return req, nil
}

// pendingRequest loads a request and ensures it can still be acted on.
func (s *RequestService) pendingRequest(ctx context.Context, id RequestID) (*CompRequest, error) {
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrRequestNotPending, req.Status)
	}
	return req, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// usageInterval builds the compensation-used interval holding the requested
// hours: it starts at midnight of the requested day and spans the hours.
// Premiums never apply to usage intervals, so the clock placement carries
// no premium consequence.
func usageInterval(id IntervalID, userID UserID, date time.Time, hours Amount, note string, createdAt time.Time) WorkInterval {
	start := DayOf(date)
	minutes := hours.Value.Mul(sixty).IntPart()
	end := start.Add(time.Duration(minutes) * time.Minute)
	return WorkInterval{
		ID:           id,
		UserID:       userID,
		Start:        start,
		End:          &end,
		BreakMinutes: 0,
		Type:         WorkCompensation,
		Approved:     false,
		Note:         note,
		CreatedAt:    createdAt,
	}
}

// idSeq keeps IDs unique even when the injected clock stands still.
var idSeq atomic.Int64

// NewRequestID mints a request identifier.
func NewRequestID(now time.Time) RequestID {
	return RequestID(fmt.Sprintf("req-%d-%d", now.UnixNano(), idSeq.Add(1)))
}

// NewIntervalID mints an interval identifier.
func NewIntervalID(now time.Time) IntervalID {
	return IntervalID(fmt.Sprintf("ivl-%d-%d", now.UnixNano(), idSeq.Add(1)))
}
