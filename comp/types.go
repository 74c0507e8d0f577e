/*
Package comp implements the compensation-time ledger.

PURPOSE:
  This package contains the core domain logic for compensatory time: turning
  an employee's raw work-interval log into accrued premium hours (weekend,
  evening, night, daily overtime), tracking hours spent as compensation
  leave, and validating new usage requests against the resulting balance.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity of hours backed by decimal.Decimal
  - WorkInterval: A single clocked work or leave period (the raw input)
  - WorkType: Distinguishes ordinary work from compensation taken as leave
  - User/Interval/Request IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Purity: Balance computation is a pure function over the interval list
  2. Precision: Uses decimal.Decimal so premium arithmetic is exact
  3. Explicit policy: All multipliers and thresholds live in PremiumPolicy,
     never in package-level state
  4. Structured rejection: Validation failures are values, not panics

USAGE:
  ledger := comp.NewLedger(comp.DefaultPolicy())
  balance := ledger.ComputeBalance("emp-123", intervals)
  decision := ledger.ValidateUsageRequest(balance, req, usedDates, today)

SEE ALSO:
  - policy.go: PremiumPolicy configuration
  - ledger.go: Balance computation
  - validate.go: Usage-request validation
*/
package comp

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity of hours
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
)

func Hours(value float64) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: UnitHours}
}

// HoursFromMinutes converts a whole-minute duration into an exact hour amount.
func HoursFromMinutes(minutes int64) Amount {
	return Amount{Value: decimal.NewFromInt(minutes).Div(sixty), Unit: UnitHours}
}

var sixty = decimal.NewFromInt(60)

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) Float64() float64             { f, _ := a.Value.Float64(); return f }
func (a Amount) String() string               { return a.Value.String() }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type IntervalID string
type RequestID string

// =============================================================================
// WORK INTERVAL - A single clocked period (the raw input to the ledger)
// =============================================================================

type WorkType string

const (
	// WorkRegular is ordinary work; qualifying intervals earn premiums.
	WorkRegular WorkType = "regular"

	// WorkCompensation is leave taken against the compensation balance.
	WorkCompensation WorkType = "compensation_used"
)

// WorkInterval is one clocked work or leave period.
//
// End == nil means the interval is still open (employee clocked in);
// open intervals are excluded from every ledger total.
type WorkInterval struct {
	ID     IntervalID
	UserID UserID

	Start time.Time
	End   *time.Time

	// Break minutes are subtracted from the worked duration.
	BreakMinutes int

	Type WorkType

	// For WorkCompensation: whether the usage has been approved.
	// Unapproved usage counts toward the pending total; whether it also
	// reduces the spendable balance is a PremiumPolicy choice.
	Approved bool

	Note      string
	CreatedAt time.Time
}

// IsOpen reports whether the interval has no end time yet.
func (iv WorkInterval) IsOpen() bool { return iv.End == nil }

// =============================================================================
// PREMIUM CATEGORIES
// =============================================================================

type Category string

const (
	CategoryWeekend  Category = "weekend"
	CategoryEvening  Category = "evening"
	CategoryNight    Category = "night"
	CategoryOvertime Category = "overtime"
)
