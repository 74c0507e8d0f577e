package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/comp-engine/comp"
	"github.com/staffhub/comp-engine/comp/store"
)

var day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func usageInterval(id, user string, start time.Time) comp.WorkInterval {
	end := start.Add(4 * time.Hour)
	return comp.WorkInterval{
		ID:     comp.IntervalID(id),
		UserID: comp.UserID(user),
		Start:  start,
		End:    &end,
		Type:   comp.WorkCompensation,
	}
}

func TestMemory_DuplicateUsageDay_Rejected(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveInterval(ctx, usageInterval("u-1", "emp-1", day)))

	err := mem.SaveInterval(ctx, usageInterval("u-2", "emp-1", day.Add(6*time.Hour)))
	assert.ErrorIs(t, err, comp.ErrDuplicateUsageDay)

	// Other users and other days are unaffected.
	assert.NoError(t, mem.SaveInterval(ctx, usageInterval("u-3", "emp-2", day)))
	assert.NoError(t, mem.SaveInterval(ctx, usageInterval("u-4", "emp-1", day.AddDate(0, 0, 1))))
}

func TestMemory_UpdateInterval_MoveOntoTakenDay_Rejected(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveInterval(ctx, usageInterval("u-1", "emp-1", day)))
	require.NoError(t, mem.SaveInterval(ctx, usageInterval("u-2", "emp-1", day.AddDate(0, 0, 1))))

	moved := usageInterval("u-2", "emp-1", day)
	assert.ErrorIs(t, mem.UpdateInterval(ctx, moved), comp.ErrDuplicateUsageDay)

	// Rewriting an interval in place on its own day is fine.
	same := usageInterval("u-1", "emp-1", day.Add(2*time.Hour))
	assert.NoError(t, mem.UpdateInterval(ctx, same))
}

func TestMemory_UsageDates_SortedDayStarts(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveInterval(ctx, usageInterval("u-1", "emp-1", day.AddDate(0, 0, 2))))
	require.NoError(t, mem.SaveInterval(ctx, usageInterval("u-2", "emp-1", day)))

	dates, err := mem.UsageDates(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, comp.DayOf(day), dates[0])
	assert.Equal(t, comp.DayOf(day.AddDate(0, 0, 2)), dates[1])
}
