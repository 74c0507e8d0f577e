/*
ledger.go - Compensation balance computation

PURPOSE:
  The central calculation: fold a user's work-interval history into a
  Balance. This is a pure function over the interval list; persistence,
  authorization, and HTTP are external concerns.

CALCULATION (per closed interval):
  1. Net hours = (end - start in minutes - break) / 60, clamped at zero
     with a flagged DataQualityIssue.
  2. Compensation-used intervals add to TotalUsed (and Pending when
     unapproved; see PendingHold).
  3. Regular intervals earn additive premiums:
       weekend   start on Sat/Sun                 hours * 0.5
       evening   not weekend, endpoint hour >= 18 hours * 0.25
       night     endpoint hour >= 22 or < 6       hours * 0.5
       overtime  max(0, hours - 8)                overtime * 1.0
  4. Current = TotalAccrued - TotalUsed.

EXAMPLE:
  Sat 10:00-19:00, no break -> 9h worked
    weekend: 9 * 0.5 = 4.5
    overtime: (9 - 8) * 1.0 = 1
    accrued from this interval: 5.5

SEE ALSO:
  - interval.go: Hour math and classification predicates
  - validate.go: Usage-request validation against the computed balance
*/
package comp

// =============================================================================
// LEDGER
// =============================================================================

// Ledger computes compensation balances under a fixed premium policy.
// It holds no state beyond the policy and is safe for concurrent use.
type Ledger struct {
	policy PremiumPolicy
}

func NewLedger(policy PremiumPolicy) *Ledger {
	return &Ledger{policy: policy}
}

// Policy returns the premium policy this ledger applies.
func (l *Ledger) Policy() PremiumPolicy { return l.policy }

// ComputeBalance folds the interval history into a Balance.
// Open intervals (End == nil) contribute nothing. Intervals belonging to
// other users are the caller's bug; they are summed like any other.
func (l *Ledger) ComputeBalance(userID UserID, intervals []WorkInterval) Balance {
	b := Balance{
		UserID:       userID,
		TotalAccrued: Hours(0),
		TotalUsed:    Hours(0),
		Pending:      Hours(0),
	}
	b.Breakdown = zeroBreakdown()

	for _, iv := range intervals {
		if iv.IsOpen() {
			continue
		}

		hours, issues := WorkedHours(iv)
		b.Issues = append(b.Issues, issues...)

		if iv.Type == WorkCompensation {
			l.applyUsage(&b, iv, hours)
			continue
		}

		l.applyPremiums(&b, iv, hours)
	}

	return b
}

// applyUsage records a compensation-used interval.
func (l *Ledger) applyUsage(b *Balance, iv WorkInterval, hours Amount) {
	if iv.Approved {
		b.TotalUsed = b.TotalUsed.Add(hours)
		return
	}

	b.Pending = b.Pending.Add(hours)
	if l.policy.PendingHold == HoldImmediately {
		b.TotalUsed = b.TotalUsed.Add(hours)
	}
}

// applyPremiums classifies a regular interval and accrues all applicable
// premiums. Categories are additive; only evening is excluded on weekends.
func (l *Ledger) applyPremiums(b *Balance, iv WorkInterval, hours Amount) {
	weekend := startsOnWeekend(iv)

	if weekend {
		premium := hours.Mul(l.policy.WeekendMultiplier)
		b.Breakdown.Weekend.add(hours, premium)
		b.TotalAccrued = b.TotalAccrued.Add(premium)
	} else if touchesEvening(iv, l.policy) {
		premium := hours.Mul(l.policy.EveningMultiplier)
		b.Breakdown.Evening.add(hours, premium)
		b.TotalAccrued = b.TotalAccrued.Add(premium)
	}

	if touchesNight(iv, l.policy) {
		premium := hours.Mul(l.policy.NightMultiplier)
		b.Breakdown.Night.add(hours, premium)
		b.TotalAccrued = b.TotalAccrued.Add(premium)
	}

	overtime := hours.Sub(l.policy.DailyOvertimeThreshold)
	if overtime.IsPositive() {
		premium := overtime.Mul(l.policy.OvertimeMultiplier)
		b.Breakdown.Overtime.add(overtime, premium)
		b.TotalAccrued = b.TotalAccrued.Add(premium)
	}
}

func zeroBreakdown() Breakdown {
	zero := CategoryTotal{Hours: Hours(0), Premium: Hours(0)}
	return Breakdown{Weekend: zero, Evening: zero, Night: zero, Overtime: zero}
}
