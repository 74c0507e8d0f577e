package comp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/staffhub/comp-engine/comp"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func closed(id string, start, end time.Time, breakMinutes int) comp.WorkInterval {
	return comp.WorkInterval{
		ID:           comp.IntervalID(id),
		UserID:       "emp-1",
		Start:        start,
		End:          &end,
		BreakMinutes: breakMinutes,
		Type:         comp.WorkRegular,
		Approved:     true,
	}
}

func usage(id string, day time.Time, hours float64, approved bool) comp.WorkInterval {
	end := day.Add(time.Duration(hours * float64(time.Hour)))
	return comp.WorkInterval{
		ID:       comp.IntervalID(id),
		UserID:   "emp-1",
		Start:    day,
		End:      &end,
		Type:     comp.WorkCompensation,
		Approved: approved,
	}
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func assertHours(t *testing.T, want string, got comp.Amount) {
	t.Helper()
	assert.Equal(t, want, got.String())
}

// =============================================================================
// PREMIUM CLASSIFICATION TESTS
// =============================================================================

func TestComputeBalance_WeekdayShift_NoPremium(t *testing.T) {
	// GIVEN: Monday 09:00-17:00 with a 60 minute break (7h net)
	// WHEN: Computing the balance
	// THEN: Nothing accrues; no category qualifies

	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-1", at(2025, time.March, 3, 9, 0), at(2025, time.March, 3, 17, 0), 60),
	})

	assertHours(t, "0", b.TotalAccrued)
	assertHours(t, "0", b.Breakdown.TotalPremium())
	assert.Empty(t, b.Issues)
}

func TestComputeBalance_SaturdayLongShift_WeekendPlusOvertime(t *testing.T) {
	// GIVEN: Saturday 10:00-19:00, no break (9h net)
	// WHEN: Computing the balance
	// THEN: weekend 9*0.5=4.5 plus overtime (9-8)*1=1, total 5.5

	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-1", at(2025, time.March, 8, 10, 0), at(2025, time.March, 8, 19, 0), 0),
	})

	assertHours(t, "4.5", b.Breakdown.Weekend.Premium)
	assertHours(t, "1", b.Breakdown.Overtime.Premium)
	assertHours(t, "0", b.Breakdown.Evening.Premium)
	assertHours(t, "5.5", b.TotalAccrued)
}

func TestComputeBalance_FridayEveningIntoNight_Additive(t *testing.T) {
	// GIVEN: Friday 20:00-23:30 with a 30 minute break (3h net)
	// WHEN: Computing the balance
	// THEN: evening 3*0.25=0.75 plus night 3*0.5=1.5, total 2.25

	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-1", at(2025, time.March, 7, 20, 0), at(2025, time.March, 7, 23, 30), 30),
	})

	assertHours(t, "0.75", b.Breakdown.Evening.Premium)
	assertHours(t, "1.5", b.Breakdown.Night.Premium)
	assertHours(t, "2.25", b.TotalAccrued)
}

func TestComputeBalance_SaturdayNight_EveningExcludedOnWeekend(t *testing.T) {
	// GIVEN: Saturday 23:00 to Sunday 02:00 (3h net)
	// WHEN: Computing the balance
	// THEN: weekend 1.5 and night 1.5 both apply; evening never does on
	//       a weekend start even though the endpoint hour qualifies

	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-1", at(2025, time.March, 8, 23, 0), at(2025, time.March, 9, 2, 0), 0),
	})

	assertHours(t, "1.5", b.Breakdown.Weekend.Premium)
	assertHours(t, "1.5", b.Breakdown.Night.Premium)
	assertHours(t, "0", b.Breakdown.Evening.Premium)
	assertHours(t, "3", b.TotalAccrued)
}

func TestComputeBalance_EarlyMorningShift_NightApplies(t *testing.T) {
	// GIVEN: Tuesday 04:00-07:00 (3h, starts before the 06:00 night end)
	// WHEN: Computing the balance
	// THEN: night premium applies via the start endpoint

	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-1", at(2025, time.March, 4, 4, 0), at(2025, time.March, 4, 7, 0), 0),
	})

	assertHours(t, "1.5", b.Breakdown.Night.Premium)
	assertHours(t, "1.5", b.TotalAccrued)
}

func TestComputeBalance_OpenIntervalIgnored(t *testing.T) {
	// GIVEN: An open interval (clocked in, never out) on a Saturday
	// WHEN: Computing the balance
	// THEN: It contributes nothing

	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		{
			ID:     "iv-open",
			UserID: "emp-1",
			Start:  at(2025, time.March, 8, 10, 0),
			Type:   comp.WorkRegular,
		},
	})

	assertHours(t, "0", b.TotalAccrued)
	assert.Empty(t, b.Issues)
}

// =============================================================================
// DATA QUALITY TESTS
// =============================================================================

func TestComputeBalance_EndBeforeStart_ClampedWithIssue(t *testing.T) {
	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-bad", at(2025, time.March, 8, 19, 0), at(2025, time.March, 8, 10, 0), 0),
	})

	assertHours(t, "0", b.TotalAccrued)
	if assert.Len(t, b.Issues, 1) {
		assert.Equal(t, comp.IssueEndBeforeStart, b.Issues[0].Code)
		assert.Equal(t, comp.IntervalID("iv-bad"), b.Issues[0].IntervalID)
	}
}

func TestComputeBalance_NegativeBreak_TreatedAsZero(t *testing.T) {
	// GIVEN: Saturday 10:00-14:00 with break -30
	// WHEN: Computing the balance
	// THEN: The break is ignored (4h net), weekend 2, one issue flagged

	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-bad", at(2025, time.March, 8, 10, 0), at(2025, time.March, 8, 14, 0), -30),
	})

	assertHours(t, "2", b.TotalAccrued)
	if assert.Len(t, b.Issues, 1) {
		assert.Equal(t, comp.IssueNegativeBreak, b.Issues[0].Code)
	}
}

func TestComputeBalance_BreakExceedsDuration_ClampedWithIssue(t *testing.T) {
	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-bad", at(2025, time.March, 8, 10, 0), at(2025, time.March, 8, 11, 0), 90),
	})

	assertHours(t, "0", b.TotalAccrued)
	if assert.Len(t, b.Issues, 1) {
		assert.Equal(t, comp.IssueBreakExceedsDuration, b.Issues[0].Code)
	}
}

// =============================================================================
// USAGE AND PENDING HOLD TESTS
// =============================================================================

func TestComputeBalance_ApprovedUsage_ReducesCurrent(t *testing.T) {
	// GIVEN: 5.5h accrued and 2h of approved usage
	// WHEN: Computing the balance
	// THEN: Current = 3.5, Pending = 0

	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-1", at(2025, time.March, 8, 10, 0), at(2025, time.March, 8, 19, 0), 0),
		usage("iv-2", at(2025, time.March, 12, 0, 0), 2, true),
	})

	assertHours(t, "5.5", b.TotalAccrued)
	assertHours(t, "2", b.TotalUsed)
	assertHours(t, "0", b.Pending)
	assertHours(t, "3.5", b.Current())
}

func TestComputeBalance_PendingUsage_HoldImmediately(t *testing.T) {
	// GIVEN: 5.5h accrued and 2h of unapproved usage under the default
	//        hold-immediately policy
	// WHEN: Computing the balance
	// THEN: The hold already reduces Current; Pending reports it too

	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-1", at(2025, time.March, 8, 10, 0), at(2025, time.March, 8, 19, 0), 0),
		usage("iv-2", at(2025, time.March, 12, 0, 0), 2, false),
	})

	assertHours(t, "2", b.Pending)
	assertHours(t, "2", b.TotalUsed)
	assertHours(t, "3.5", b.Current())
}

func TestComputeBalance_PendingUsage_HoldOnApproval(t *testing.T) {
	// GIVEN: Same history but the policy defers the hold until approval
	// WHEN: Computing the balance
	// THEN: Current is untouched; Pending still reports the 2h

	policy := comp.DefaultPolicy()
	policy.PendingHold = comp.HoldOnApproval

	ledger := comp.NewLedger(policy)
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-1", at(2025, time.March, 8, 10, 0), at(2025, time.March, 8, 19, 0), 0),
		usage("iv-2", at(2025, time.March, 12, 0, 0), 2, false),
	})

	assertHours(t, "2", b.Pending)
	assertHours(t, "0", b.TotalUsed)
	assertHours(t, "5.5", b.Current())
}

func TestComputeBalance_MultipleIntervals_Accumulate(t *testing.T) {
	// GIVEN: Two premium-earning shifts and one plain weekday shift
	// WHEN: Computing the balance
	// THEN: Accrual is the sum of the qualifying shifts only

	ledger := comp.NewLedger(comp.DefaultPolicy())
	b := ledger.ComputeBalance("emp-1", []comp.WorkInterval{
		closed("iv-1", at(2025, time.March, 3, 9, 0), at(2025, time.March, 3, 17, 0), 60),
		closed("iv-2", at(2025, time.March, 8, 10, 0), at(2025, time.March, 8, 19, 0), 0),
		closed("iv-3", at(2025, time.March, 7, 20, 0), at(2025, time.March, 7, 23, 30), 30),
	})

	assertHours(t, "7.75", b.TotalAccrued)
	assertHours(t, "7.75", b.Breakdown.TotalPremium())
}
