/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists everything the payroll engine reads and writes: the cash-advance
  ledger, employees, raw attendance, the policy document, yearly statutory
  amounts and paid-week snapshots.

INTERFACES IMPLEMENTED:
  generic.TxStore:                 Ledger transaction persistence
  payroll.AttendanceReader:        Raw records by clock-in range
  payroll.PolicyProvider:          Policy document parsed by factory
  payroll.YearlyDeductionReader:   SSS / Pag-IBIG per employee and year
  payroll.SnapshotReader/Writer:   Paid-week snapshots

APPEND-ONLY ENFORCEMENT:
  - No UPDATE or DELETE statements on the transactions table
  - No UPDATE statements on payment_snapshots; a paid week stays paid
  - Corrections are reversal transactions

KEY TABLES:
  transactions:       Immutable ledger of cash advances and repayments
  employees:          Employee records with daily salary
  attendance_records: Raw clock-in/clock-out pairs
  policy_settings:    Versioned JSON policy document
  yearly_deductions:  Statutory amounts per employee and year
  payment_snapshots:  Frozen paid-week figures

TIME STORAGE:
  Instants are stored as fixed-width UTC text (timeLayout), so string
  comparison in SQL matches chronological order.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single pooled connection:
  SQLite has one writer, and ":memory:" databases are per connection.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/payroll.db", sqlite.WithDefaultLocation(manila))
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := advance.NewLedger(store)

SEE ALSO:
  - generic/store.go: Ledger store interface
  - payroll/engine.go: Reader/writer interfaces
  - generic/store/memory.go: In-memory ledger store for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
)

// timeLayout is fixed-width so stored instants sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	policies *factory.PolicyFactory
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultLocation sets the timezone policies use when the stored
// document doesn't name one.
func WithDefaultLocation(loc *time.Location) Option {
	return func(s *Store) {
		s.policies = factory.NewPolicyFactory(loc)
	}
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, policies: factory.NewPolicyFactory(time.UTC)}
	for _, opt := range opts {
		opt(store)
	}
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

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Transactions (append-only ledger)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		entity_id TEXT NOT NULL,
		policy_id TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		effective_at TEXT NOT NULL,
		delta_value TEXT NOT NULL,
		delta_unit TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		reference_id TEXT,
		reason TEXT,
		idempotency_key TEXT UNIQUE,
		metadata_json TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	-- Composite index for balance replay (hot path)
	CREATE INDEX IF NOT EXISTS idx_transactions_entity_policy_date
		ON transactions(entity_id, policy_id, effective_at);
	CREATE INDEX IF NOT EXISTS idx_transactions_reference
		ON transactions(reference_id) WHERE reference_id IS NOT NULL;

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		salary_per_day TEXT,
		created_at TEXT NOT NULL
	);

	-- Raw attendance (clock_out NULL while the shift is open)
	CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		clock_in TEXT NOT NULL,
		clock_out TEXT,
		salary_per_day TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_employee_clock_in
		ON attendance_records(employee_id, clock_in);

	-- At most one open shift per employee
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_one_open_shift
		ON attendance_records(employee_id) WHERE clock_out IS NULL;

	-- Policy document (single row, versioned)
	CREATE TABLE IF NOT EXISTS policy_settings (
		id TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		updated_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Yearly statutory deductions
	CREATE TABLE IF NOT EXISTS yearly_deductions (
		employee_id TEXT NOT NULL REFERENCES employees(id),
		year INTEGER NOT NULL,
		sss TEXT NOT NULL,
		pag_ibig TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, year)
	);

	-- Paid-week snapshots
	CREATE TABLE IF NOT EXISTS payment_snapshots (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		week_start TEXT NOT NULL,
		week_end TEXT NOT NULL,
		days_worked INTEGER NOT NULL DEFAULT 0,
		regular_hours TEXT NOT NULL DEFAULT '0',
		overtime_hours TEXT NOT NULL DEFAULT '0',
		holiday_hours TEXT NOT NULL DEFAULT '0',
		late_minutes INTEGER NOT NULL DEFAULT 0,
		sss TEXT NOT NULL,
		pag_ibig TEXT NOT NULL,
		cash_advance TEXT NOT NULL,
		remaining_balance TEXT NOT NULL,
		regular_pay TEXT NOT NULL DEFAULT '0',
		overtime_pay TEXT NOT NULL DEFAULT '0',
		holiday_pay TEXT NOT NULL DEFAULT '0',
		gross_pay TEXT NOT NULL,
		net_pay TEXT NOT NULL,
		paid_at TEXT NOT NULL,
		paid_by TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(employee_id, week_start, week_end)
	);

	CREATE INDEX IF NOT EXISTS idx_payment_snapshots_employee
		ON payment_snapshots(employee_id, week_start);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTION STORE (generic.Store interface)
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectTransactions = `
	SELECT id, entity_id, policy_id, resource_type, effective_at, delta_value, delta_unit,
	       tx_type, reference_id, reason, idempotency_key, metadata_json, created_by, created_at
	FROM transactions
`

// Append adds a transaction to the ledger.
func (s *Store) Append(ctx context.Context, tx generic.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return appendTx(ctx, s.db, tx)
}

func appendTx(ctx context.Context, db execer, tx generic.Transaction) error {
	var metadataJSON sql.NullString
	if len(tx.Metadata) > 0 {
		b, err := json.Marshal(tx.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		metadataJSON = sql.NullString{String: string(b), Valid: true}
	}

	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO transactions
		(id, entity_id, policy_id, resource_type, effective_at, delta_value, delta_unit,
		 tx_type, reference_id, reason, idempotency_key, metadata_json, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		tx.ID,
		tx.EntityID,
		tx.PolicyID,
		tx.ResourceType.ResourceID(), // Store as string
		formatDay(tx.EffectiveAt),
		tx.Delta.Value.String(),
		tx.Delta.Unit,
		tx.Type,
		nullString(tx.ReferenceID),
		nullString(tx.Reason),
		nullString(tx.IdempotencyKey),
		metadataJSON,
		nullString(tx.CreatedBy),
		formatTime(createdAt),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("%w: %v", generic.ErrTransactionFailed, err)
	}

	return nil
}

// AppendBatch adds multiple transactions atomically.
func (s *Store) AppendBatch(ctx context.Context, txs []generic.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check for duplicate idempotency keys within the batch first
	idempotencyKeys := make(map[string]bool)
	for _, tx := range txs {
		if tx.IdempotencyKey != "" {
			if idempotencyKeys[tx.IdempotencyKey] {
				return generic.ErrDuplicateIdempotencyKey
			}
			idempotencyKeys[tx.IdempotencyKey] = true
		}
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, tx := range txs {
		if err := appendTx(ctx, sqlTx, tx); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

// Load returns all transactions for an entity+policy.
func (s *Store) Load(ctx context.Context, entityID generic.EntityID, policyID generic.PolicyID) ([]generic.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return loadTx(ctx, s.db, entityID, policyID)
}

func loadTx(ctx context.Context, db querier, entityID generic.EntityID, policyID generic.PolicyID) ([]generic.Transaction, error) {
	query := selectTransactions + `
		WHERE entity_id = ? AND policy_id = ?
		ORDER BY effective_at ASC, rowid ASC
	`
	return queryTransactions(ctx, db, query, entityID, policyID)
}

// LoadRange returns transactions with effective day in [from, to].
func (s *Store) LoadRange(ctx context.Context, entityID generic.EntityID, policyID generic.PolicyID, from, to generic.TimePoint) ([]generic.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return loadRangeTx(ctx, s.db, entityID, policyID, from, to)
}

func loadRangeTx(ctx context.Context, db querier, entityID generic.EntityID, policyID generic.PolicyID, from, to generic.TimePoint) ([]generic.Transaction, error) {
	query := selectTransactions + `
		WHERE entity_id = ? AND policy_id = ?
		  AND effective_at >= ? AND effective_at <= ?
		ORDER BY effective_at ASC, rowid ASC
	`
	return queryTransactions(ctx, db, query, entityID, policyID, formatDay(from), formatDay(to))
}

// Exists checks if an idempotency key exists.
func (s *Store) Exists(ctx context.Context, idempotencyKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return existsTx(ctx, s.db, idempotencyKey)
}

func existsTx(ctx context.Context, db querier, idempotencyKey string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE idempotency_key = ?",
		idempotencyKey,
	).Scan(&count)

	return count > 0, err
}

func queryTransactions(ctx context.Context, db querier, query string, args ...any) ([]generic.Transaction, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []generic.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (generic.Transaction, error) {
	var (
		tx             generic.Transaction
		effectiveAt    string
		resourceTypeID string // Scan as string, convert to interface
		deltaValue     decimal.Decimal
		deltaUnit      string
		referenceID    sql.NullString
		reason         sql.NullString
		idempotencyKey sql.NullString
		metadataJSON   sql.NullString
		createdBy      sql.NullString
		createdAt      string
	)

	err := rows.Scan(
		&tx.ID, &tx.EntityID, &tx.PolicyID, &resourceTypeID,
		&effectiveAt, &deltaValue, &deltaUnit, &tx.Type,
		&referenceID, &reason, &idempotencyKey, &metadataJSON, &createdBy, &createdAt,
	)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	// Convert string to ResourceType via registry
	tx.ResourceType = generic.GetOrCreateResource(resourceTypeID)
	if tx.EffectiveAt, err = parseDay(effectiveAt); err != nil {
		return tx, err
	}
	tx.Delta = generic.Amount{Value: deltaValue, Unit: generic.Unit(deltaUnit)}
	tx.ReferenceID = referenceID.String
	tx.Reason = reason.String
	tx.IdempotencyKey = idempotencyKey.String
	tx.CreatedBy = createdBy.String
	tx.CreatedAt, _ = time.Parse(timeLayout, createdAt)

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &tx.Metadata); err != nil {
			return tx, fmt.Errorf("failed to decode metadata of %s: %w", tx.ID, err)
		}
	}

	return tx, nil
}

// =============================================================================
// TRANSACTIONAL STORE (generic.TxStore interface)
// =============================================================================

var _ generic.TxStore = (*Store)(nil)

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store generic.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore reads and writes through the open transaction; the parent lock
// is already held.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) Append(ctx context.Context, tx generic.Transaction) error {
	return appendTx(ctx, ts.tx, tx)
}

func (ts *txStore) AppendBatch(ctx context.Context, txs []generic.Transaction) error {
	for _, tx := range txs {
		if err := appendTx(ctx, ts.tx, tx); err != nil {
			return err
		}
	}
	return nil
}

func (ts *txStore) Load(ctx context.Context, entityID generic.EntityID, policyID generic.PolicyID) ([]generic.Transaction, error) {
	return loadTx(ctx, ts.tx, entityID, policyID)
}

func (ts *txStore) LoadRange(ctx context.Context, entityID generic.EntityID, policyID generic.PolicyID, from, to generic.TimePoint) ([]generic.Transaction, error) {
	return loadRangeTx(ctx, ts.tx, entityID, policyID, from, to)
}

func (ts *txStore) Exists(ctx context.Context, idempotencyKey string) (bool, error) {
	return existsTx(ctx, ts.tx, idempotencyKey)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Children before parents for the foreign keys.
	tables := []string{"payment_snapshots", "yearly_deductions", "attendance_records", "transactions", "employees", "policy_settings"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatDay(tp generic.TimePoint) string {
	return tp.String()
}

func parseDay(s string) (generic.TimePoint, error) {
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}, fmt.Errorf("failed to parse stored day %q: %w", s, err)
	}
	return tp, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
