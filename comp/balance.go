/*
balance.go - Compensation balance and per-category breakdown

PURPOSE:
  The derived state the rest of the system consumes: how many premium
  hours an employee has earned, spent, and has pending, plus a breakdown
  by premium category for dashboards.

BALANCE COMPONENTS:
  TotalAccrued: Sum of premium hours from all qualifying regular intervals
  TotalUsed:    Hours from compensation-used intervals that reduce balance
  Pending:      Hours from usage awaiting approval (informational counter)
  Current():    TotalAccrued - TotalUsed, the spendable total

  Whether unapproved usage is already inside TotalUsed depends on the
  policy's PendingHold setting; Pending always reports it either way.

INVARIANT:
  Current() can only go negative when usage was force-written outside
  normal validation; ValidateUsageRequest never accepts past the balance.
*/
package comp

// =============================================================================
// BREAKDOWN - Per-category accrual detail
// =============================================================================

// CategoryTotal tracks both the raw hours that qualified for a category
// and the premium hours they earned.
type CategoryTotal struct {
	Hours   Amount
	Premium Amount
}

func (ct *CategoryTotal) add(hours, premium Amount) {
	ct.Hours = ct.Hours.Add(hours)
	ct.Premium = ct.Premium.Add(premium)
}

// Breakdown is the per-category view of accrued premiums.
// Categories are additive: the same interval may appear in several.
type Breakdown struct {
	Weekend  CategoryTotal
	Evening  CategoryTotal
	Night    CategoryTotal
	Overtime CategoryTotal
}

// TotalPremium sums the premium hours across all categories.
func (bd Breakdown) TotalPremium() Amount {
	return bd.Weekend.Premium.
		Add(bd.Evening.Premium).
		Add(bd.Night.Premium).
		Add(bd.Overtime.Premium)
}

// =============================================================================
// BALANCE
// =============================================================================

// Balance is the computed compensation state for one user over the
// supplied interval history. It is recomputed on demand, never cached.
type Balance struct {
	UserID UserID

	TotalAccrued Amount
	TotalUsed    Amount

	// Pending is the hours from usage intervals awaiting approval.
	// Informational: depending on PendingHold these hours may or may not
	// already be included in TotalUsed.
	Pending Amount

	Breakdown Breakdown

	// Issues flags malformed intervals that were clamped during computation.
	Issues []DataQualityIssue
}

// Current returns the spendable balance: accrued minus used.
func (b Balance) Current() Amount {
	return b.TotalAccrued.Sub(b.TotalUsed)
}

// CanSpend reports whether the given hours fit within the current balance.
func (b Balance) CanSpend(hours Amount) bool {
	return !b.Current().Sub(hours).IsNegative()
}
