/*
Package sqlite provides a SQLite-backed ledger.Store.

PURPOSE:
  Durable storage for period ledgers. Each period key owns one row holding
  the record in its JSON wire format; saving replaces the row.

KEY TABLE:
  ledgers:
    period_key   "points-March 2025" (primary key)
    record_json  {"points": ..., "history": [...]}
    balance      copy of points, for listing without decoding
    entry_count  number of history entries
    updated_at   RFC3339 time of the last save

MIGRATIONS:
  Versioned SQL files under migrations/ are embedded and applied with
  golang-migrate on New().

MALFORMED ROWS:
  A row whose record_json does not decode is reported as
  ledger.ErrMalformedRecord. The session treats that as a fresh period.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. ":memory:" databases are pinned to
  a single connection so every query sees the same database.

USAGE:
  store, err := sqlite.New("./data/points.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  session, err := ledger.OpenSession(ctx, ledger.SessionConfig{Store: store, Secret: code})

SEE ALSO:
  - ledger/store.go: Interface definition
  - ledger/record.go: Wire format
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/points-engine/ledger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements ledger.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	inMemory := dbPath == ":memory:"
	if !inMemory {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if inMemory {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, now: time.Now}
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

// migrate applies the embedded migrations on the store's own connection.
// The migrate instance is not closed: that would close s.db.
func (s *Store) migrate() error {
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// =============================================================================
// LEDGER STORE (ledger.Store interface)
// =============================================================================

// Load returns the saved state for the period.
func (s *Store) Load(ctx context.Context, key ledger.PeriodKey) (ledger.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT record_json FROM ledgers WHERE period_key = ?`,
		key.StorageKey(),
	).Scan(&raw)

	if err == sql.ErrNoRows {
		return ledger.State{}, false, nil
	}
	if err != nil {
		return ledger.State{}, false, fmt.Errorf("failed to load %s: %w", key, err)
	}

	state, _, err := ledger.DecodeRecord([]byte(raw))
	if err != nil {
		return ledger.State{}, false, fmt.Errorf("load %s: %w", key, err)
	}
	return state, true, nil
}

// Save replaces the record for the period.
func (s *Store) Save(ctx context.Context, key ledger.PeriodKey, state ledger.State) error {
	raw, err := ledger.EncodeRecord(state)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO ledgers (period_key, record_json, balance, entry_count, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(period_key) DO UPDATE SET
			record_json = excluded.record_json,
			balance = excluded.balance,
			entry_count = excluded.entry_count,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		key.StorageKey(),
		string(raw),
		state.Balance,
		len(state.Entries),
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// =============================================================================
// PERIOD LISTING
// =============================================================================

// PeriodSummary describes a stored period without decoding it.
type PeriodSummary struct {
	Period    ledger.PeriodKey
	Balance   int
	Entries   int
	UpdatedAt time.Time
}

// Periods lists stored periods, most recently saved first.
func (s *Store) Periods(ctx context.Context) ([]PeriodSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT period_key, balance, entry_count, updated_at FROM ledgers ORDER BY updated_at DESC, period_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PeriodSummary
	for rows.Next() {
		var (
			storageKey, updatedAt string
			p                     PeriodSummary
		)
		if err := rows.Scan(&storageKey, &p.Balance, &p.Entries, &updatedAt); err != nil {
			return nil, err
		}
		p.Period = ledger.PeriodKey(strings.TrimPrefix(storageKey, "points-"))
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// putRaw writes record_json as-is. Tests use it to plant broken rows.
func (s *Store) putRaw(ctx context.Context, key ledger.PeriodKey, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO ledgers (period_key, record_json, balance, entry_count, updated_at) VALUES (?, ?, 0, 0, ?)`,
		key.StorageKey(), raw, s.now().UTC().Format(time.RFC3339))
	return err
}

// Compile-time check that Store implements ledger.Store
var _ ledger.Store = (*Store)(nil)
