// Package store provides comp.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/staffhub/comp-engine/comp"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	intervals map[comp.IntervalID]comp.WorkInterval
	requests  map[comp.RequestID]comp.CompRequest
}

func NewMemory() *Memory {
	return &Memory{
		intervals: make(map[comp.IntervalID]comp.WorkInterval),
		requests:  make(map[comp.RequestID]comp.CompRequest),
	}
}

var _ comp.Store = (*Memory)(nil)

// =============================================================================
// INTERVAL STORE
// =============================================================================

func (m *Memory) SaveInterval(_ context.Context, iv comp.WorkInterval) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if iv.Type == comp.WorkCompensation && m.usageDayTakenLocked(iv.UserID, iv.Start, iv.ID) {
		return comp.ErrDuplicateUsageDay
	}
	m.intervals[iv.ID] = iv
	return nil
}

func (m *Memory) UpdateInterval(_ context.Context, iv comp.WorkInterval) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.intervals[iv.ID]; !ok {
		return comp.ErrIntervalNotFound
	}
	if iv.Type == comp.WorkCompensation && m.usageDayTakenLocked(iv.UserID, iv.Start, iv.ID) {
		return comp.ErrDuplicateUsageDay
	}
	m.intervals[iv.ID] = iv
	return nil
}

func (m *Memory) DeleteInterval(_ context.Context, id comp.IntervalID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.intervals[id]; !ok {
		return comp.ErrIntervalNotFound
	}
	delete(m.intervals, id)
	return nil
}

func (m *Memory) GetInterval(_ context.Context, id comp.IntervalID) (*comp.WorkInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	iv, ok := m.intervals[id]
	if !ok {
		return nil, comp.ErrIntervalNotFound
	}
	return &iv, nil
}

func (m *Memory) IntervalsByUser(_ context.Context, userID comp.UserID) ([]comp.WorkInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []comp.WorkInterval
	for _, iv := range m.intervals {
		if iv.UserID == userID {
			result = append(result, iv)
		}
	}
	sortIntervals(result)
	return result, nil
}

func (m *Memory) IntervalsInRange(_ context.Context, userID comp.UserID, period comp.Period) ([]comp.WorkInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []comp.WorkInterval
	for _, iv := range m.intervals {
		if iv.UserID == userID && period.Contains(iv.Start) {
			result = append(result, iv)
		}
	}
	sortIntervals(result)
	return result, nil
}

func (m *Memory) UsageDates(_ context.Context, userID comp.UserID) ([]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var dates []time.Time
	for _, iv := range m.intervals {
		if iv.UserID == userID && iv.Type == comp.WorkCompensation {
			dates = append(dates, comp.DayOf(iv.Start))
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// usageDayTakenLocked checks the duplicate-usage-day constraint, ignoring
// the interval being written itself (for updates).
func (m *Memory) usageDayTakenLocked(userID comp.UserID, day time.Time, self comp.IntervalID) bool {
	for _, existing := range m.intervals {
		if existing.ID == self {
			continue
		}
		if existing.UserID == userID && existing.Type == comp.WorkCompensation && comp.SameDay(existing.Start, day) {
			return true
		}
	}
	return false
}

func sortIntervals(ivs []comp.WorkInterval) {
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start.Before(ivs[j].Start) })
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func (m *Memory) SaveRequest(_ context.Context, req comp.CompRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req
	return nil
}

func (m *Memory) UpdateRequest(_ context.Context, req comp.CompRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.requests[req.ID]; !ok {
		return comp.ErrRequestNotFound
	}
	m.requests[req.ID] = req
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id comp.RequestID) (*comp.CompRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, ok := m.requests[id]
	if !ok {
		return nil, comp.ErrRequestNotFound
	}
	return &req, nil
}

func (m *Memory) RequestsByUser(_ context.Context, userID comp.UserID) ([]comp.CompRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []comp.CompRequest
	for _, req := range m.requests {
		if req.UserID == userID {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *Memory) PendingRequests(_ context.Context) ([]comp.CompRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []comp.CompRequest
	for _, req := range m.requests {
		if req.Status == comp.StatusPending {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}
