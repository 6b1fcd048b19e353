/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements settlement.Store plus the record CRUD the API layer needs
  (tasks, worklogs, segments, adjustments, remittances). The same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

ATOMICITY:
  ApplyRun executes inside one BEGIN...COMMIT. All remittance rows of a
  run and all unit mutations land together or not at all. SQLite's
  single-writer transaction is also the serialization point between
  concurrent settlement runs: the second writer sees the first run's
  units as already remitted.

AMOUNT STORAGE:
  Monetary values are stored as exact decimal TEXT, never REAL. They
  round-trip through money.Parse / Amount.String without loss.

KEY TABLES:
  tasks:         Billable work descriptions
  worklogs:      One worker's effort on one task (cached remitted total)
  time_segments: Logged intervals (work status + settlement status)
  adjustments:   Manual bonuses/deductions/corrections
  remittances:   Payout batches

CASCADE:
  time_segments and adjustments carry ON DELETE CASCADE on their
  worklog FK; deleting a worklog removes its children. Remittance
  references from units use ON DELETE SET NULL so payout history never
  blocks worklog deletion.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer at a time, better crash recovery.

USAGE:
  st, err := sqlite.New("./data/settlement.db")
  defer st.Close()
  engine := settlement.NewEngine(st, logger)

SEE ALSO:
  - settlement/store.go: Interface definitions and contracts
  - settlement/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/settlement-engine/money"
	"github.com/warp/settlement-engine/settlement"
)

// Store implements settlement.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
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
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS remittances (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		gross_amount TEXT NOT NULL,
		net_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		failure_reason TEXT,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		created_at TEXT NOT NULL,
		processed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_remittances_worker
		ON remittances(worker_id);
	CREATE INDEX IF NOT EXISTS idx_remittances_status
		ON remittances(status);

	CREATE TABLE IF NOT EXISTS worklogs (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL REFERENCES tasks(id),
		worker_id TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		remitted_total TEXT NOT NULL DEFAULT '0',
		remittance_id TEXT REFERENCES remittances(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_worklogs_task ON worklogs(task_id);
	CREATE INDEX IF NOT EXISTS idx_worklogs_worker ON worklogs(worker_id);

	CREATE TABLE IF NOT EXISTS time_segments (
		id TEXT PRIMARY KEY,
		worklog_id TEXT NOT NULL REFERENCES worklogs(id) ON DELETE CASCADE,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		settlement_status TEXT NOT NULL DEFAULT 'UNREMITTED',
		remittance_id TEXT REFERENCES remittances(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_segments_worklog
		ON time_segments(worklog_id);
	-- Hot path: the batcher's global unremitted selection
	CREATE INDEX IF NOT EXISTS idx_segments_settlement
		ON time_segments(settlement_status, status);

	CREATE TABLE IF NOT EXISTS adjustments (
		id TEXT PRIMARY KEY,
		worklog_id TEXT NOT NULL REFERENCES worklogs(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		reason TEXT NOT NULL,
		adjustment_type TEXT NOT NULL,
		settlement_status TEXT NOT NULL DEFAULT 'UNREMITTED',
		remittance_id TEXT REFERENCES remittances(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_adjustments_worklog
		ON adjustments(worklog_id);
	CREATE INDEX IF NOT EXISTS idx_adjustments_settlement
		ON adjustments(settlement_status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SETTLEMENT STORE (settlement.Store interface)
// =============================================================================

const segmentColumns = `id, worklog_id, start_time, end_time, status, settlement_status, remittance_id, created_at`

// UnremittedSegments returns every ACTIVE+UNREMITTED segment system-wide.
func (s *Store) UnremittedSegments(ctx context.Context) ([]settlement.TimeSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + segmentColumns + ` FROM time_segments
		WHERE status = 'ACTIVE' AND settlement_status = 'UNREMITTED'
		ORDER BY created_at ASC`
	return s.querySegments(ctx, query)
}

const adjustmentColumns = `id, worklog_id, amount, reason, adjustment_type, settlement_status, remittance_id, created_at`

// UnremittedAdjustments returns every UNREMITTED adjustment system-wide.
func (s *Store) UnremittedAdjustments(ctx context.Context) ([]settlement.Adjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + adjustmentColumns + ` FROM adjustments
		WHERE settlement_status = 'UNREMITTED'
		ORDER BY created_at ASC`
	return s.queryAdjustments(ctx, query)
}

// GetWorkLog returns a worklog by id.
func (s *Store) GetWorkLog(ctx context.Context, id settlement.WorkLogID) (*settlement.WorkLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, task_id, worker_id, hourly_rate, remitted_total, remittance_id, created_at
		FROM worklogs WHERE id = ?`, id)
	return scanWorkLog(row)
}

// ApplyRun applies every batch of one generation run in a single SQL
// transaction.
func (s *Store) ApplyRun(ctx context.Context, run settlement.SettlementRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, batch := range run.Batches {
		if err := s.insertRemittanceTx(ctx, tx, batch.Remittance); err != nil {
			return err
		}

		remID := string(batch.Remittance.ID)

		for _, sid := range batch.SegmentIDs {
			res, err := tx.ExecContext(ctx, `
				UPDATE time_segments
				SET settlement_status = 'REMITTED', remittance_id = ?
				WHERE id = ? AND settlement_status = 'UNREMITTED'`,
				remID, sid)
			if err != nil {
				return fmt.Errorf("failed to settle segment %s: %w", sid, err)
			}
			// The status guard in the WHERE clause keeps payment
			// exactly-once even if another run got here first.
			if n, _ := res.RowsAffected(); n == 0 {
				return settlement.ErrSegmentNotFound
			}
		}

		for _, aid := range batch.AdjustmentIDs {
			res, err := tx.ExecContext(ctx, `
				UPDATE adjustments
				SET settlement_status = 'REMITTED', remittance_id = ?
				WHERE id = ? AND settlement_status = 'UNREMITTED'`,
				remID, aid)
			if err != nil {
				return fmt.Errorf("failed to settle adjustment %s: %w", aid, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return settlement.ErrAdjustmentNotFound
			}
		}

		for wlID, delta := range batch.WorkLogDeltas {
			wl, err := s.getWorkLogTx(ctx, tx, wlID)
			if err != nil {
				return err
			}
			newTotal := wl.RemittedTotal.Add(delta)
			if _, err := tx.ExecContext(ctx, `
				UPDATE worklogs SET remitted_total = ?, remittance_id = ?
				WHERE id = ?`,
				newTotal.String(), remID, wlID); err != nil {
				return fmt.Errorf("failed to update worklog %s: %w", wlID, err)
			}
		}
	}

	return tx.Commit()
}

func (s *Store) insertRemittanceTx(ctx context.Context, tx *sql.Tx, rem settlement.Remittance) error {
	var processedAt any
	if rem.ProcessedAt != nil {
		processedAt = rem.ProcessedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO remittances
		(id, worker_id, gross_amount, net_amount, status, failure_reason,
		 period_start, period_end, created_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rem.ID,
		rem.WorkerID,
		rem.GrossAmount.String(),
		rem.NetAmount.String(),
		rem.Status,
		nullString(rem.FailureReason),
		rem.PeriodStart.UTC().Format(time.RFC3339Nano),
		rem.PeriodEnd.UTC().Format(time.RFC3339Nano),
		rem.CreatedAt.UTC().Format(time.RFC3339Nano),
		processedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert remittance: %w", err)
	}
	return nil
}

func (s *Store) getWorkLogTx(ctx context.Context, tx *sql.Tx, id settlement.WorkLogID) (*settlement.WorkLog, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, task_id, worker_id, hourly_rate, remitted_total, remittance_id, created_at
		FROM worklogs WHERE id = ?`, id)
	return scanWorkLog(row)
}

// =============================================================================
// TASKS
// =============================================================================

// SaveTask inserts a task.
func (s *Store) SaveTask(ctx context.Context, t settlement.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, created_at)
		VALUES (?, ?, ?, ?)`,
		t.ID, t.Title, nullString(t.Description),
		t.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// GetTask returns a task by id.
func (s *Store) GetTask(ctx context.Context, id settlement.TaskID) (*settlement.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, created_at FROM tasks WHERE id = ?`, id)

	var t settlement.Task
	var description sql.NullString
	var createdAt string
	if err := row.Scan(&t.ID, &t.Title, &description, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, settlement.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	t.Description = description.String
	t.CreatedAt = parseTime(createdAt)
	return &t, nil
}

// ListTasks returns all tasks.
func (s *Store) ListTasks(ctx context.Context) ([]settlement.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, created_at FROM tasks ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []settlement.Task
	for rows.Next() {
		var t settlement.Task
		var description sql.NullString
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Title, &description, &createdAt); err != nil {
			return nil, err
		}
		t.Description = description.String
		t.CreatedAt = parseTime(createdAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// =============================================================================
// WORKLOGS
// =============================================================================

// SaveWorkLog inserts a worklog.
func (s *Store) SaveWorkLog(ctx context.Context, wl settlement.WorkLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO worklogs (id, task_id, worker_id, hourly_rate, remitted_total, remittance_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		wl.ID, wl.TaskID, wl.WorkerID,
		wl.HourlyRate.String(),
		wl.RemittedTotal.String(),
		remittanceRef(wl.RemittanceID),
		wl.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save worklog: %w", err)
	}
	return nil
}

// ListWorkLogs returns all worklogs.
func (s *Store) ListWorkLogs(ctx context.Context) ([]settlement.WorkLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, worker_id, hourly_rate, remitted_total, remittance_id, created_at
		FROM worklogs ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list worklogs: %w", err)
	}
	defer rows.Close()

	var worklogs []settlement.WorkLog
	for rows.Next() {
		wl, err := scanWorkLog(rows)
		if err != nil {
			return nil, err
		}
		worklogs = append(worklogs, *wl)
	}
	return worklogs, rows.Err()
}

// DeleteWorkLog removes a worklog; segments and adjustments cascade.
func (s *Store) DeleteWorkLog(ctx context.Context, id settlement.WorkLogID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM worklogs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete worklog: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return settlement.ErrWorkLogNotFound
	}
	return nil
}

// SegmentsForWorkLog returns all segments of a worklog.
func (s *Store) SegmentsForWorkLog(ctx context.Context, id settlement.WorkLogID) ([]settlement.TimeSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + segmentColumns + ` FROM time_segments
		WHERE worklog_id = ? ORDER BY start_time ASC`
	return s.querySegments(ctx, query, id)
}

// AdjustmentsForWorkLog returns all adjustments of a worklog.
func (s *Store) AdjustmentsForWorkLog(ctx context.Context, id settlement.WorkLogID) ([]settlement.Adjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + adjustmentColumns + ` FROM adjustments
		WHERE worklog_id = ? ORDER BY created_at ASC`
	return s.queryAdjustments(ctx, query, id)
}

// =============================================================================
// SEGMENTS AND ADJUSTMENTS
// =============================================================================

// SaveSegment inserts a time segment.
func (s *Store) SaveSegment(ctx context.Context, seg settlement.TimeSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_segments
		(id, worklog_id, start_time, end_time, status, settlement_status, remittance_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		seg.ID, seg.WorkLogID,
		seg.Start.UTC().Format(time.RFC3339Nano),
		seg.End.UTC().Format(time.RFC3339Nano),
		seg.Status, seg.SettlementStatus,
		remittanceRef(seg.RemittanceID),
		seg.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save segment: %w", err)
	}
	return nil
}

// UpdateSegmentStatus changes a segment's work status (the dispute and
// removal workflow). Settlement status is never touched here; only the
// batcher moves a unit to REMITTED.
func (s *Store) UpdateSegmentStatus(ctx context.Context, id settlement.SegmentID, status settlement.SegmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE time_segments SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update segment status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return settlement.ErrSegmentNotFound
	}
	return nil
}

// SaveAdjustment inserts an adjustment. Valid at any time, including
// after the parent worklog has been settled.
func (s *Store) SaveAdjustment(ctx context.Context, adj settlement.Adjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adjustments
		(id, worklog_id, amount, reason, adjustment_type, settlement_status, remittance_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		adj.ID, adj.WorkLogID,
		adj.Amount.String(),
		adj.Reason, adj.Type, adj.SettlementStatus,
		remittanceRef(adj.RemittanceID),
		adj.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save adjustment: %w", err)
	}
	return nil
}

// =============================================================================
// REMITTANCES
// =============================================================================

const remittanceColumns = `id, worker_id, gross_amount, net_amount, status, failure_reason, period_start, period_end, created_at, processed_at`

// GetRemittance returns a remittance by id.
func (s *Store) GetRemittance(ctx context.Context, id settlement.RemittanceID) (*settlement.Remittance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+remittanceColumns+` FROM remittances WHERE id = ?`, id)
	return scanRemittance(row)
}

// ListRemittances returns remittances, optionally filtered by status.
func (s *Store) ListRemittances(ctx context.Context, status string) ([]settlement.Remittance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + remittanceColumns + ` FROM remittances`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, strings.ToUpper(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list remittances: %w", err)
	}
	defer rows.Close()

	var rems []settlement.Remittance
	for rows.Next() {
		rem, err := scanRemittance(rows)
		if err != nil {
			return nil, err
		}
		rems = append(rems, *rem)
	}
	return rems, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkLog(row rowScanner) (*settlement.WorkLog, error) {
	var wl settlement.WorkLog
	var rate, total, createdAt string
	var remID sql.NullString

	if err := row.Scan(&wl.ID, &wl.TaskID, &wl.WorkerID, &rate, &total, &remID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, settlement.ErrWorkLogNotFound
		}
		return nil, fmt.Errorf("failed to scan worklog: %w", err)
	}

	var err error
	if wl.HourlyRate, err = money.Parse(rate); err != nil {
		return nil, fmt.Errorf("bad hourly_rate %q: %w", rate, err)
	}
	if wl.RemittedTotal, err = money.Parse(total); err != nil {
		return nil, fmt.Errorf("bad remitted_total %q: %w", total, err)
	}
	if remID.Valid {
		id := settlement.RemittanceID(remID.String)
		wl.RemittanceID = &id
	}
	wl.CreatedAt = parseTime(createdAt)
	return &wl, nil
}

func (s *Store) querySegments(ctx context.Context, query string, args ...any) ([]settlement.TimeSegment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var segments []settlement.TimeSegment
	for rows.Next() {
		var seg settlement.TimeSegment
		var start, end, createdAt string
		var remID sql.NullString
		if err := rows.Scan(&seg.ID, &seg.WorkLogID, &start, &end,
			&seg.Status, &seg.SettlementStatus, &remID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		seg.Start = parseTime(start)
		seg.End = parseTime(end)
		if remID.Valid {
			id := settlement.RemittanceID(remID.String)
			seg.RemittanceID = &id
		}
		seg.CreatedAt = parseTime(createdAt)
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

func (s *Store) queryAdjustments(ctx context.Context, query string, args ...any) ([]settlement.Adjustment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []settlement.Adjustment
	for rows.Next() {
		var adj settlement.Adjustment
		var amount, createdAt string
		var remID sql.NullString
		if err := rows.Scan(&adj.ID, &adj.WorkLogID, &amount, &adj.Reason,
			&adj.Type, &adj.SettlementStatus, &remID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		var perr error
		if adj.Amount, perr = money.Parse(amount); perr != nil {
			return nil, fmt.Errorf("bad adjustment amount %q: %w", amount, perr)
		}
		if remID.Valid {
			id := settlement.RemittanceID(remID.String)
			adj.RemittanceID = &id
		}
		adj.CreatedAt = parseTime(createdAt)
		adjustments = append(adjustments, adj)
	}
	return adjustments, rows.Err()
}

func scanRemittance(row rowScanner) (*settlement.Remittance, error) {
	var rem settlement.Remittance
	var gross, net, periodStart, periodEnd, createdAt string
	var failureReason, processedAt sql.NullString

	if err := row.Scan(&rem.ID, &rem.WorkerID, &gross, &net, &rem.Status,
		&failureReason, &periodStart, &periodEnd, &createdAt, &processedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, settlement.ErrRemittanceNotFound
		}
		return nil, fmt.Errorf("failed to scan remittance: %w", err)
	}

	var err error
	if rem.GrossAmount, err = money.Parse(gross); err != nil {
		return nil, fmt.Errorf("bad gross_amount %q: %w", gross, err)
	}
	if rem.NetAmount, err = money.Parse(net); err != nil {
		return nil, fmt.Errorf("bad net_amount %q: %w", net, err)
	}
	rem.FailureReason = failureReason.String
	rem.PeriodStart = parseTime(periodStart)
	rem.PeriodEnd = parseTime(periodEnd)
	rem.CreatedAt = parseTime(createdAt)
	if processedAt.Valid {
		t := parseTime(processedAt.String)
		rem.ProcessedAt = &t
	}
	return &rem, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func remittanceRef(id *settlement.RemittanceID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}
