package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/BitWorks/xbrlstudio/internal/filing"
)

// ErrStoreClosed is returned for any operation attempted after Close
// (or before a successful Open).
var ErrStoreClosed = errors.New("store is closed")

// NameResolution selects how LastFiling (and therefore the entity
// display name refresh after each import) picks the "most recent"
// filing.
type NameResolution int

const (
	// NameByCalendar resolves by the numerically latest (year, quarter)
	// holding a filing. Recommended default for new stores.
	NameByCalendar NameResolution = iota

	// NameByScanOrder reproduces the legacy behavior: filing-year
	// tables are walked in reverse discovery order and quarter columns
	// in reverse positional order, and the first non-null blob wins.
	// This tracks table enumeration order, not calendar recency.
	NameByScanOrder
)

// Store provides durable storage for entities and filings in a single
// SQLite database file. A Store moves Closed → Open → Closed; no write
// may occur while closed.
type Store struct {
	db      *sql.DB
	path    string
	codec   Codec
	nameRes NameResolution
	log     *slog.Logger
}

// Option configures a Store at Open time.
type Option func(*Store)

// WithCodec sets the blob serialization codec. Defaults to JSONCodec.
func WithCodec(c Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithNameResolution sets the LastFiling resolution strategy.
func WithNameResolution(r NameResolution) Option {
	return func(s *Store) { s.nameRes = r }
}

// WithLogger sets the structured logger used for best-effort sweep
// diagnostics. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open creates or opens the filing database at the given path.
// Opening establishes the connection, applies pragmas, and ensures the
// entities table exists (creating it for a fresh store). Idempotent;
// safe to call on an existing database.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY on interleaved statements.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	s := &Store{
		db:      db,
		path:    path,
		codec:   JSONCodec{},
		nameRes: NameByCalendar,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureEntityTable(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure entities table: %w", err)
	}

	return s, nil
}

// Close releases the database connection. Further operations return
// ErrStoreClosed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	return db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// conn returns the live connection or ErrStoreClosed.
func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	return s.db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// ensureEntityTable creates the entities table for a fresh store.
func (s *Store) ensureEntityTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS entities (
			entity_cik  INTEGER PRIMARY KEY,
			parent_cik  INTEGER,
			entity_name TEXT
		)
	`)
	return err
}

// ensureFilingsTable creates the per-year filings table if absent.
// The name is always "filings" + 4-digit year; no other naming scheme
// is recognized.
func (s *Store) ensureFilingsTable(ctx context.Context, year string) (string, error) {
	if !filing.IsYear(year) {
		return "", fmt.Errorf("invalid filing year %q", year)
	}
	db, err := s.conn()
	if err != nil {
		return "", err
	}
	name := filingsTableName(year)
	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			entity_cik INTEGER PRIMARY KEY,
			q1 BLOB,
			q2 BLOB,
			q3 BLOB,
			q4 BLOB
		)
	`, name))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	return name, nil
}

// filingsTableName maps a 4-digit year to its table name.
func filingsTableName(year string) string {
	return "filings" + year
}

// quarterColumn validates a quarter token and returns the column name.
// Quarter tokens are the only identifiers ever interpolated into SQL
// besides validated table names.
func quarterColumn(quarter string) (string, error) {
	switch quarter {
	case "q1", "q2", "q3", "q4":
		return quarter, nil
	}
	return "", fmt.Errorf("invalid quarter %q", quarter)
}
