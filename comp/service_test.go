package comp_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/comp-engine/comp"
	"github.com/staffhub/comp-engine/comp/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*comp.RequestService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := comp.NewRequestService(mem, comp.NewLedger(comp.DefaultPolicy()))
	svc.Now = func() time.Time { return today }
	return svc, mem
}

// seedAccrual gives emp-1 accrued hours via Saturday shifts (10:00-18:00,
// 8h each, weekend premium 4h per shift).
func seedAccrual(t *testing.T, mem *store.Memory, saturdays int) {
	t.Helper()
	for i := 0; i < saturdays; i++ {
		day := time.Date(2025, time.January, 4+7*i, 0, 0, 0, 0, time.UTC)
		iv := closed(string(rune('a'+i))+"-sat", day.Add(10*time.Hour), day.Add(18*time.Hour), 0)
		require.NoError(t, mem.SaveInterval(context.Background(), iv))
	}
}

// =============================================================================
// CREATE
// =============================================================================

func TestRequestService_Create_PersistsHoldAndRequest(t *testing.T) {
	// GIVEN: 8h accrued (two Saturday shifts)
	// WHEN: Requesting 4h for tomorrow
	// THEN: A pending request and an unapproved usage interval exist, and
	//       the recomputed balance shows the hold

	svc, mem := newTestService(t)
	seedAccrual(t, mem, 2)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, comp.CreateUsage{
		UserID: "emp-1",
		Date:   today.AddDate(0, 0, 1),
		Hours:  comp.Hours(4),
		Reason: "dentist",
	})
	require.NoError(t, err)
	assert.Equal(t, comp.StatusPending, req.Status)

	iv, err := mem.GetInterval(ctx, req.IntervalID)
	require.NoError(t, err)
	assert.Equal(t, comp.WorkCompensation, iv.Type)
	assert.False(t, iv.Approved)

	b, err := svc.BalanceFor(ctx, "emp-1", comp.Period{})
	require.NoError(t, err)
	assertHours(t, "8", b.TotalAccrued)
	assertHours(t, "4", b.Pending)
	assertHours(t, "4", b.Current())
}

func TestRequestService_Create_InsufficientBalance_Rejected(t *testing.T) {
	// GIVEN: Only 4h accrued
	// WHEN: Requesting 6h
	// THEN: RequestRejectedError with insufficient_balance; nothing persisted

	svc, mem := newTestService(t)
	seedAccrual(t, mem, 1)
	ctx := context.Background()

	_, err := svc.CreateRequest(ctx, comp.CreateUsage{
		UserID: "emp-1",
		Date:   today.AddDate(0, 0, 1),
		Hours:  comp.Hours(6),
	})

	var rejected *comp.RequestRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, comp.RejectInsufficientBalance, rejected.Decision.Code)
	assert.True(t, comp.IsClientError(err))

	pending, err := mem.PendingRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRequestService_Create_DuplicateDate_Rejected(t *testing.T) {
	svc, mem := newTestService(t)
	seedAccrual(t, mem, 2)
	ctx := context.Background()

	date := today.AddDate(0, 0, 1)
	_, err := svc.CreateRequest(ctx, comp.CreateUsage{UserID: "emp-1", Date: date, Hours: comp.Hours(2)})
	require.NoError(t, err)

	_, err = svc.CreateRequest(ctx, comp.CreateUsage{UserID: "emp-1", Date: date, Hours: comp.Hours(2)})
	var rejected *comp.RequestRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, comp.RejectDuplicateDate, rejected.Decision.Code)
}

// =============================================================================
// REVIEW LIFECYCLE
// =============================================================================

func TestRequestService_Approve_MarksIntervalApproved(t *testing.T) {
	svc, mem := newTestService(t)
	seedAccrual(t, mem, 2)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, comp.CreateUsage{
		UserID: "emp-1", Date: today.AddDate(0, 0, 1), Hours: comp.Hours(4),
	})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, comp.ApproveAction{RequestID: created.ID, ReviewerID: "mgr-1"})
	require.NoError(t, err)
	assert.Equal(t, comp.StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "mgr-1", *approved.ReviewedBy)

	iv, err := mem.GetInterval(ctx, created.IntervalID)
	require.NoError(t, err)
	assert.True(t, iv.Approved)

	b, err := svc.BalanceFor(ctx, "emp-1", comp.Period{})
	require.NoError(t, err)
	assertHours(t, "4", b.TotalUsed)
	assertHours(t, "0", b.Pending)
	assertHours(t, "4", b.Current())
}

func TestRequestService_Reject_ReleasesHold(t *testing.T) {
	// GIVEN: A pending 4h request holding the balance
	// WHEN: Rejecting it
	// THEN: The held interval is gone and the balance is fully restored

	svc, mem := newTestService(t)
	seedAccrual(t, mem, 2)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, comp.CreateUsage{
		UserID: "emp-1", Date: today.AddDate(0, 0, 1), Hours: comp.Hours(4),
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, comp.RejectAction{
		RequestID: created.ID, ReviewerID: "mgr-1", Note: "short staffed",
	})
	require.NoError(t, err)
	assert.Equal(t, comp.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.ReviewNote)
	assert.Equal(t, "short staffed", *rejected.ReviewNote)

	_, err = mem.GetInterval(ctx, created.IntervalID)
	assert.ErrorIs(t, err, comp.ErrIntervalNotFound)

	b, err := svc.BalanceFor(ctx, "emp-1", comp.Period{})
	require.NoError(t, err)
	assertHours(t, "8", b.Current())
}

func TestRequestService_Cancel_ReleasesHold(t *testing.T) {
	svc, mem := newTestService(t)
	seedAccrual(t, mem, 2)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, comp.CreateUsage{
		UserID: "emp-1", Date: today.AddDate(0, 0, 1), Hours: comp.Hours(4),
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, comp.CancelAction{RequestID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, comp.StatusCancelled, cancelled.Status)

	b, err := svc.BalanceFor(ctx, "emp-1", comp.Period{})
	require.NoError(t, err)
	assertHours(t, "8", b.Current())
}

func TestRequestService_ActOnReviewedRequest_NotPending(t *testing.T) {
	svc, mem := newTestService(t)
	seedAccrual(t, mem, 2)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, comp.CreateUsage{
		UserID: "emp-1", Date: today.AddDate(0, 0, 1), Hours: comp.Hours(4),
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, comp.ApproveAction{RequestID: created.ID, ReviewerID: "mgr-1"})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, comp.ApproveAction{RequestID: created.ID, ReviewerID: "mgr-2"})
	assert.ErrorIs(t, err, comp.ErrRequestNotPending)

	_, err = svc.Cancel(ctx, comp.CancelAction{RequestID: created.ID})
	assert.ErrorIs(t, err, comp.ErrRequestNotPending)
}

func TestRequestService_UnknownRequest_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Approve(context.Background(), comp.ApproveAction{RequestID: "missing", ReviewerID: "mgr-1"})
	assert.ErrorIs(t, err, comp.ErrRequestNotFound)
	assert.True(t, comp.IsNotFound(err))
}

// =============================================================================
// UPDATE
// =============================================================================

func TestRequestService_Update_ExcludesOwnHoldFromValidation(t *testing.T) {
	// GIVEN: 8h accrued, a pending request already holding 6h
	// WHEN: Raising that request to 8h
	// THEN: Accepted, because its own 6h hold must not count against it

	svc, mem := newTestService(t)
	seedAccrual(t, mem, 2)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, comp.CreateUsage{
		UserID: "emp-1", Date: today.AddDate(0, 0, 1), Hours: comp.Hours(6),
	})
	require.NoError(t, err)

	hours := comp.Hours(8)
	updated, err := svc.Update(ctx, comp.UpdateAction{RequestID: created.ID, NewHours: &hours})
	require.NoError(t, err)
	assertHours(t, "8", updated.Hours)

	b, err := svc.BalanceFor(ctx, "emp-1", comp.Period{})
	require.NoError(t, err)
	assertHours(t, "0", b.Current())
}

func TestRequestService_Update_MoveDate_RewritesHold(t *testing.T) {
	svc, mem := newTestService(t)
	seedAccrual(t, mem, 2)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, comp.CreateUsage{
		UserID: "emp-1", Date: today.AddDate(0, 0, 1), Hours: comp.Hours(4),
	})
	require.NoError(t, err)

	newDate := today.AddDate(0, 0, 3)
	updated, err := svc.Update(ctx, comp.UpdateAction{RequestID: created.ID, NewDate: &newDate})
	require.NoError(t, err)
	assert.Equal(t, comp.DayOf(newDate), updated.Date)

	iv, err := mem.GetInterval(ctx, created.IntervalID)
	require.NoError(t, err)
	assert.Equal(t, comp.DayOf(newDate), iv.Start)
}

func TestRequestService_Update_OverBalance_Rejected(t *testing.T) {
	svc, mem := newTestService(t)
	seedAccrual(t, mem, 1)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, comp.CreateUsage{
		UserID: "emp-1", Date: today.AddDate(0, 0, 1), Hours: comp.Hours(2),
	})
	require.NoError(t, err)

	hours := comp.Hours(6)
	_, err = svc.Update(ctx, comp.UpdateAction{RequestID: created.ID, NewHours: &hours})

	var rejected *comp.RequestRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, comp.RejectInsufficientBalance, rejected.Decision.Code)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestRequestService_ConcurrentSpend_OnlyOneWins(t *testing.T) {
	// GIVEN: Exactly 8h of balance
	// WHEN: Two goroutines simultaneously request 8h on different days
	// THEN: Exactly one is accepted; the balance never goes negative

	svc, mem := newTestService(t)
	seedAccrual(t, mem, 2)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CreateRequest(ctx, comp.CreateUsage{
				UserID: "emp-1",
				Date:   today.AddDate(0, 0, 1+i),
				Hours:  comp.Hours(8),
			})
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range results {
		if err == nil {
			accepted++
		} else {
			var rejected *comp.RequestRejectedError
			assert.True(t, errors.As(err, &rejected))
			assert.Equal(t, comp.RejectInsufficientBalance, rejected.Decision.Code)
		}
	}
	assert.Equal(t, 1, accepted)

	b, err := svc.BalanceFor(ctx, "emp-1", comp.Period{})
	require.NoError(t, err)
	assert.False(t, b.Current().IsNegative())
}
