/*
validate.go - Usage-request validation

PURPOSE:
  Decides whether a new compensation-leave request can be accepted against
  a computed balance. Rejections are structured Decision values with a
  specific reason code for direct display to the end user - never errors
  used for control flow.

RULES (all must pass):
  1. Hours are positive and within the single-day cap (8h by default)
  2. The requested date is today or later
  3. No usage interval already exists on that date for this user
  4. The requested hours fit within the current balance

Accepted decisions report the remaining balance after the request.
*/
package comp

import (
	"fmt"
	"time"
)

// =============================================================================
// USAGE REQUEST
// =============================================================================

// UsageRequest asks to spend compensation hours on a single day.
type UsageRequest struct {
	UserID UserID
	Date   time.Time
	Hours  Amount
	Reason string
}

// =============================================================================
// DECISION - Structured accept/reject result
// =============================================================================

type RejectionCode string

const (
	RejectInvalidHours        RejectionCode = "invalid_hours"
	RejectExceedsDailyCap     RejectionCode = "exceeds_daily_cap"
	RejectDateInPast          RejectionCode = "date_in_past"
	RejectDuplicateDate       RejectionCode = "duplicate_date"
	RejectInsufficientBalance RejectionCode = "insufficient_balance"
)

// Decision is the outcome of validating a usage request.
type Decision struct {
	Accepted bool

	// Set on rejection.
	Code    RejectionCode
	Message string

	// Set on acceptance: balance left after this request.
	RemainingBalance Amount
}

func accepted(remaining Amount) Decision {
	return Decision{Accepted: true, RemainingBalance: remaining}
}

func rejected(code RejectionCode, format string, args ...any) Decision {
	return Decision{Accepted: false, Code: code, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateUsageRequest checks a request against the balance and the user's
// existing usage dates. Pure: "today" and the existing dates are inputs so
// callers (and tests) control time.
func (l *Ledger) ValidateUsageRequest(balance Balance, req UsageRequest, existingUsage []time.Time, today time.Time) Decision {
	if !req.Hours.IsPositive() {
		return rejected(RejectInvalidHours, "requested hours must be positive, got %s", req.Hours)
	}
	if req.Hours.GreaterThan(l.policy.MaxRequestHours) {
		return rejected(RejectExceedsDailyCap, "requested %s hours exceeds the single-day cap of %s", req.Hours, l.policy.MaxRequestHours)
	}

	day := DayOf(req.Date)
	if day.Before(DayOf(today)) {
		return rejected(RejectDateInPast, "requested date %s is in the past", day.Format("2006-01-02"))
	}

	for _, existing := range existingUsage {
		if SameDay(existing, day) {
			return rejected(RejectDuplicateDate, "a compensation request already exists for %s", day.Format("2006-01-02"))
		}
	}

	if !balance.CanSpend(req.Hours) {
		return rejected(RejectInsufficientBalance, "requested %s hours but only %s available", req.Hours, balance.Current())
	}

	return accepted(balance.Current().Sub(req.Hours))
}
