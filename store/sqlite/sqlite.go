/*
Package sqlite provides a SQLite-backed implementation of comp.Store.

PURPOSE:
  Persists the work-interval log and the compensation-request records.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  work_intervals: The raw clocked periods the ledger computes over
  comp_requests:  Compensation-leave requests and their review state

UNIQUE USAGE DAY:
  idx_unique_usage_day enforces at most one compensation-used interval
  per (user, calendar day). The RequestService validates this before
  writing; the index closes the race between concurrent writers.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

USAGE:
  store, err := sqlite.New("./data/comp.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := comp.NewRequestService(store, comp.NewLedger(comp.DefaultPolicy()))

SEE ALSO:
  - comp/store.go: Interface definitions
  - comp/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/staffhub/comp-engine/comp"
)

// Store implements comp.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ comp.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Work intervals (the ledger's raw input)
	CREATE TABLE IF NOT EXISTS work_intervals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		work_type TEXT NOT NULL,
		approved BOOLEAN NOT NULL DEFAULT FALSE,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_intervals_user_start
		ON work_intervals(user_id, start_at);
	CREATE INDEX IF NOT EXISTS idx_intervals_work_type
		ON work_intervals(work_type);

	-- At most one compensation-used interval per (user, day).
	-- Backstop for the validation-layer duplicate-date check.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_usage_day
		ON work_intervals(user_id, DATE(start_at))
		WHERE work_type = 'compensation_used';

	-- Compensation requests (approval workflow)
	CREATE TABLE IF NOT EXISTS comp_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		request_date TEXT NOT NULL,
		hours TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		reason TEXT,
		reviewed_by TEXT,
		reviewed_at TEXT,
		review_note TEXT,
		interval_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_user
		ON comp_requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON comp_requests(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// INTERVAL STORE (comp.IntervalStore interface)
// =============================================================================

func (s *Store) SaveInterval(ctx context.Context, iv comp.WorkInterval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO work_intervals
		(id, user_id, start_at, end_at, break_minutes, work_type, approved, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		iv.ID,
		iv.UserID,
		iv.Start.UTC().Format(time.RFC3339),
		nullTime(iv.End),
		iv.BreakMinutes,
		iv.Type,
		iv.Approved,
		iv.Note,
		timestamp(iv.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return comp.ErrDuplicateUsageDay
		}
		return fmt.Errorf("failed to save interval: %w", err)
	}
	return nil
}

func (s *Store) UpdateInterval(ctx context.Context, iv comp.WorkInterval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE work_intervals
		SET user_id = ?, start_at = ?, end_at = ?, break_minutes = ?,
		    work_type = ?, approved = ?, note = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		iv.UserID,
		iv.Start.UTC().Format(time.RFC3339),
		nullTime(iv.End),
		iv.BreakMinutes,
		iv.Type,
		iv.Approved,
		iv.Note,
		iv.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return comp.ErrDuplicateUsageDay
		}
		return fmt.Errorf("failed to update interval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return comp.ErrIntervalNotFound
	}
	return nil
}

func (s *Store) DeleteInterval(ctx context.Context, id comp.IntervalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM work_intervals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete interval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return comp.ErrIntervalNotFound
	}
	return nil
}

func (s *Store) GetInterval(ctx context.Context, id comp.IntervalID) (*comp.WorkInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ivs, err := s.queryIntervals(ctx, selectIntervals+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(ivs) == 0 {
		return nil, comp.ErrIntervalNotFound
	}
	return &ivs[0], nil
}

func (s *Store) IntervalsByUser(ctx context.Context, userID comp.UserID) ([]comp.WorkInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryIntervals(ctx,
		selectIntervals+` WHERE user_id = ? ORDER BY start_at`, userID)
}

func (s *Store) IntervalsInRange(ctx context.Context, userID comp.UserID, period comp.Period) ([]comp.WorkInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryIntervals(ctx,
		selectIntervals+` WHERE user_id = ? AND start_at >= ? AND start_at <= ? ORDER BY start_at`,
		userID,
		period.Start.UTC().Format(time.RFC3339),
		period.End.UTC().Format(time.RFC3339),
	)
}

func (s *Store) UsageDates(ctx context.Context, userID comp.UserID) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT DATE(start_at) FROM work_intervals
		WHERE user_id = ? AND work_type = ?
		ORDER BY DATE(start_at)
	`, userID, comp.WorkCompensation)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		t, err := time.ParseInLocation("2006-01-02", day, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse usage date %q: %w", day, err)
		}
		dates = append(dates, t)
	}
	return dates, rows.Err()
}

const selectIntervals = `
	SELECT id, user_id, start_at, end_at, break_minutes, work_type, approved, note, created_at
	FROM work_intervals`

func (s *Store) queryIntervals(ctx context.Context, query string, args ...any) ([]comp.WorkInterval, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query intervals: %w", err)
	}
	defer rows.Close()

	var intervals []comp.WorkInterval
	for rows.Next() {
		iv, err := scanInterval(rows)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

func scanInterval(rows *sql.Rows) (comp.WorkInterval, error) {
	var (
		iv        comp.WorkInterval
		startAt   string
		endAt     sql.NullString
		note      sql.NullString
		createdAt string
	)
	if err := rows.Scan(&iv.ID, &iv.UserID, &startAt, &endAt, &iv.BreakMinutes,
		&iv.Type, &iv.Approved, &note, &createdAt); err != nil {
		return comp.WorkInterval{}, fmt.Errorf("failed to scan interval: %w", err)
	}

	start, err := time.Parse(time.RFC3339, startAt)
	if err != nil {
		return comp.WorkInterval{}, fmt.Errorf("failed to parse start_at %q: %w", startAt, err)
	}
	iv.Start = start

	if endAt.Valid {
		end, err := time.Parse(time.RFC3339, endAt.String)
		if err != nil {
			return comp.WorkInterval{}, fmt.Errorf("failed to parse end_at %q: %w", endAt.String, err)
		}
		iv.End = &end
	}
	iv.Note = note.String
	if created, err := time.Parse(time.RFC3339, createdAt); err == nil {
		iv.CreatedAt = created
	}
	return iv, nil
}

// =============================================================================
// REQUEST STORE (comp.RequestStore interface)
// =============================================================================

func (s *Store) SaveRequest(ctx context.Context, req comp.CompRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO comp_requests
		(id, user_id, request_date, hours, status, reason, reviewed_by, reviewed_at,
		 review_note, interval_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		req.ID,
		req.UserID,
		req.Date.UTC().Format("2006-01-02"),
		req.Hours.Value.String(),
		req.Status,
		req.Reason,
		nullString(req.ReviewedBy),
		nullTime(req.ReviewedAt),
		nullString(req.ReviewNote),
		req.IntervalID,
		timestamp(req.CreatedAt),
		timestamp(req.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

func (s *Store) UpdateRequest(ctx context.Context, req comp.CompRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE comp_requests
		SET request_date = ?, hours = ?, status = ?, reviewed_by = ?, reviewed_at = ?,
		    review_note = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		req.Date.UTC().Format("2006-01-02"),
		req.Hours.Value.String(),
		req.Status,
		nullString(req.ReviewedBy),
		nullTime(req.ReviewedAt),
		nullString(req.ReviewNote),
		timestamp(req.UpdatedAt),
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return comp.ErrRequestNotFound
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id comp.RequestID) (*comp.CompRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reqs, err := s.queryRequests(ctx, selectRequests+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, comp.ErrRequestNotFound
	}
	return &reqs[0], nil
}

func (s *Store) RequestsByUser(ctx context.Context, userID comp.UserID) ([]comp.CompRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		selectRequests+` WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (s *Store) PendingRequests(ctx context.Context) ([]comp.CompRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		selectRequests+` WHERE status = ? ORDER BY created_at`, comp.StatusPending)
}

const selectRequests = `
	SELECT id, user_id, request_date, hours, status, reason, reviewed_by, reviewed_at,
	       review_note, interval_id, created_at, updated_at
	FROM comp_requests`

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]comp.CompRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []comp.CompRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func scanRequest(rows *sql.Rows) (comp.CompRequest, error) {
	var (
		req        comp.CompRequest
		date       string
		hours      string
		reason     sql.NullString
		reviewedBy sql.NullString
		reviewedAt sql.NullString
		reviewNote sql.NullString
		createdAt  string
		updatedAt  string
	)
	if err := rows.Scan(&req.ID, &req.UserID, &date, &hours, &req.Status, &reason,
		&reviewedBy, &reviewedAt, &reviewNote, &req.IntervalID, &createdAt, &updatedAt); err != nil {
		return comp.CompRequest{}, fmt.Errorf("failed to scan request: %w", err)
	}

	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return comp.CompRequest{}, fmt.Errorf("failed to parse request_date %q: %w", date, err)
	}
	req.Date = day

	value, err := decimal.NewFromString(hours)
	if err != nil {
		return comp.CompRequest{}, fmt.Errorf("failed to parse hours %q: %w", hours, err)
	}
	req.Hours = comp.Amount{Value: value, Unit: comp.UnitHours}

	req.Reason = reason.String
	if reviewedBy.Valid {
		req.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		if t, err := time.Parse(time.RFC3339, reviewedAt.String); err == nil {
			req.ReviewedAt = &t
		}
	}
	if reviewNote.Valid {
		req.ReviewNote = &reviewNote.String
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		req.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		req.UpdatedAt = t
	}
	return req, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
