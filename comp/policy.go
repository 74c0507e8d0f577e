/*
policy.go - Premium policy configuration

PURPOSE:
  Bundles every tunable rule of the compensation calculation into one
  explicit value. The policy is passed into the Ledger rather than read
  from shared settings, so each calculation is deterministic given its
  inputs.

PREMIUM RULES (defaults):
  Weekend:   interval STARTS on Saturday or Sunday     -> hours * 0.5
  Evening:   not weekend, either endpoint hour >= 18   -> hours * 0.25
  Night:     either endpoint hour >= 22 or < 6         -> hours * 0.5
  Overtime:  max(0, hours - 8)                         -> overtime * 1.0

  Categories are ADDITIVE: a Saturday night shift earns both the weekend
  and the night premium, plus overtime when applicable. The only exclusion
  is evening-vs-weekend.

PENDING HOLD:
  Whether an unapproved usage request reduces the spendable balance
  immediately (HoldImmediately) or only once approved (HoldOnApproval).
  HoldImmediately is the default; both totals are always reported so the
  UI can show pending hours either way.

SEE ALSO:
  - ledger.go: Applies these rules
  - validate.go: Uses the request cap
*/
package comp

import "github.com/shopspring/decimal"

// =============================================================================
// PENDING HOLD - When does an unapproved request reduce the balance?
// =============================================================================

type PendingHold string

const (
	// HoldImmediately reduces the spendable balance as soon as a usage
	// request is created, before approval.
	HoldImmediately PendingHold = "hold_immediately"

	// HoldOnApproval reduces the balance only once the request is approved.
	HoldOnApproval PendingHold = "hold_on_approval"
)

// =============================================================================
// PREMIUM POLICY
// =============================================================================

// PremiumPolicy is the complete rule set for compensation accrual and usage.
type PremiumPolicy struct {
	// Premium multipliers per category.
	WeekendMultiplier  decimal.Decimal
	EveningMultiplier  decimal.Decimal
	NightMultiplier    decimal.Decimal
	OvertimeMultiplier decimal.Decimal

	// Hour-of-day boundaries. An endpoint qualifies as evening when its
	// hour >= EveningStartHour, and as night when its hour >= NightStartHour
	// or < NightEndHour.
	EveningStartHour int
	NightStartHour   int
	NightEndHour     int

	// Daily overtime threshold: hours worked beyond this earn overtime.
	DailyOvertimeThreshold Amount

	// Single-day cap on usage requests.
	MaxRequestHours Amount

	// When unapproved usage starts reducing the spendable balance.
	PendingHold PendingHold
}

// DefaultPolicy returns the standard rule set.
func DefaultPolicy() PremiumPolicy {
	return PremiumPolicy{
		WeekendMultiplier:      decimal.NewFromFloat(0.5),
		EveningMultiplier:      decimal.NewFromFloat(0.25),
		NightMultiplier:        decimal.NewFromFloat(0.5),
		OvertimeMultiplier:     decimal.NewFromInt(1),
		EveningStartHour:       18,
		NightStartHour:         22,
		NightEndHour:           6,
		DailyOvertimeThreshold: Hours(8),
		MaxRequestHours:        Hours(8),
		PendingHold:            HoldImmediately,
	}
}
