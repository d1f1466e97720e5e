package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BitWorks/xbrlstudio/internal/filing"
)

// Entity is one row of the entity hierarchy. A nil ParentCIK marks a
// root; the rows form a forest, not necessarily a single tree.
type Entity struct {
	CIK       int
	ParentCIK *int
	Name      string
}

// Conflict reports a filing already stored for a (cik, period) pair an
// import is about to write. This is the dedup signal surfaced to the
// operator before an overwrite.
type Conflict struct {
	CIK      int
	Period   string
	Existing *filing.Filing
}

// ListTables returns all table names, re-queried fresh from
// sqlite_master each call so concurrent external schema changes are
// observed.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	return tables, nil
}

// TableExists reports whether a table is currently present.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	var found string
	err = db.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?
	`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("table exists %s: %w", name, err)
	}
	return true, nil
}

// filingYearTables returns the filings-year tables in discovery order.
// Only names of the exact "filings" + 4-digit-year shape count.
func (s *Store) filingYearTables(ctx context.Context) ([]string, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	var years []string
	for _, t := range tables {
		if strings.HasPrefix(t, "filings") && filing.IsYear(t[len("filings"):]) {
			years = append(years, t)
		}
	}
	return years, nil
}

// SelectFiling reads and deserializes the quarter column addressed by
// a 6-character "qNYYYY" period token. A missing table, row, or null
// column is an absent result, not an error.
func (s *Store) SelectFiling(ctx context.Context, cik int, period string) (*filing.Filing, error) {
	year, quarter, ok := filing.ParsePeriod(period)
	if !ok {
		return nil, nil
	}
	col, err := quarterColumn(quarter)
	if err != nil {
		return nil, nil
	}

	table := filingsTableName(year)
	exists, err := s.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var blob []byte
	err = db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM %s WHERE entity_cik = ?
	`, col, table), cik).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select filing %s cik %d: %w", period, cik, err)
	}
	if blob == nil {
		return nil, nil
	}

	return s.codec.Unmarshal(blob)
}

// ExistsForImport checks whether importing the given filing would
// overwrite stored data. With an explicit cik exactly one lookup is
// performed against it; otherwise every cik disclosed in the filing's
// own metadata is checked. The returned conflicts carry the existing
// filings.
func (s *Store) ExistsForImport(ctx context.Context, f *filing.Filing, cik *int) ([]Conflict, error) {
	info := filing.ExtractInfo(f)

	targets := info.CIKs
	if cik != nil {
		targets = []int{*cik}
	}

	var conflicts []Conflict
	for _, target := range targets {
		existing, err := s.SelectFiling(ctx, target, info.Period)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			conflicts = append(conflicts, Conflict{CIK: target, Period: info.Period, Existing: existing})
		}
	}

	return conflicts, nil
}

// LastFiling returns the most-recently-stored filing for an entity
// under the store's name-resolution strategy, or nil when the entity
// has no stored filings.
func (s *Store) LastFiling(ctx context.Context, cik int) (*filing.Filing, error) {
	tables, err := s.filingYearTables(ctx)
	if err != nil {
		return nil, err
	}

	switch s.nameRes {
	case NameByScanOrder:
		// Legacy scan: reverse discovery order, not numeric year order.
		reversed := make([]string, len(tables))
		for i, t := range tables {
			reversed[len(tables)-1-i] = t
		}
		tables = reversed
	default:
		// Numerically latest year first.
		sort.Slice(tables, func(i, j int) bool { return tables[i] > tables[j] })
	}

	for _, table := range tables {
		f, err := s.lastFilingInTable(ctx, table, cik)
		if err != nil {
			return nil, err
		}
		if f != nil {
			return f, nil
		}
	}

	return nil, nil
}

// lastFilingInTable scans a year row's quarter columns in reverse
// positional order and deserializes the first non-null blob.
func (s *Store) lastFilingInTable(ctx context.Context, table string, cik int) (*filing.Filing, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var q1, q2, q3, q4 []byte
	err = db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT q1, q2, q3, q4 FROM %s WHERE entity_cik = ?
	`, table), cik).Scan(&q1, &q2, &q3, &q4)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last filing in %s cik %d: %w", table, cik, err)
	}

	for _, blob := range [][]byte{q4, q3, q2, q1} {
		if blob != nil {
			return s.codec.Unmarshal(blob)
		}
	}
	return nil, nil
}

// EntityTree returns every (cik, parentCik, name) row.
func (s *Store) EntityTree(ctx context.Context) ([]Entity, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT entity_cik, parent_cik, entity_name
		FROM entities
		ORDER BY entity_cik ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entity tree: %w", err)
	}
	defer rows.Close()

	var entities []Entity
	for rows.Next() {
		var e Entity
		var parent sql.NullInt64
		var name sql.NullString
		if err := rows.Scan(&e.CIK, &parent, &name); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		if parent.Valid {
			p := int(parent.Int64)
			e.ParentCIK = &p
		}
		e.Name = name.String
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}

	if entities == nil {
		entities = []Entity{}
	}
	return entities, nil
}

// EntityDict returns a name→cik lookup map over all entities.
func (s *Store) EntityDict(ctx context.Context) (map[string]int, error) {
	entities, err := s.EntityTree(ctx)
	if err != nil {
		return nil, err
	}
	dict := make(map[string]int, len(entities))
	for _, e := range entities {
		if e.Name != "" {
			dict[e.Name] = e.CIK
		}
	}
	return dict, nil
}

// NameFromCik resolves an entity's display name. The second return is
// false when the cik is unknown.
func (s *Store) NameFromCik(ctx context.Context, cik int) (string, bool, error) {
	db, err := s.conn()
	if err != nil {
		return "", false, err
	}
	var name sql.NullString
	err = db.QueryRowContext(ctx, `
		SELECT entity_name FROM entities WHERE entity_cik = ?
	`, cik).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("name from cik %d: %w", cik, err)
	}
	return name.String, true, nil
}

// FilingsAvailable lists the "YYYY-Qn" tokens for which the entity has
// a non-null stored blob, across every filing-year table.
func (s *Store) FilingsAvailable(ctx context.Context, cik int) ([]string, error) {
	tables, err := s.filingYearTables(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(tables)

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var available []string
	for _, table := range tables {
		year := table[len("filings"):]
		var q1, q2, q3, q4 []byte
		err := db.QueryRowContext(ctx, fmt.Sprintf(`
			SELECT q1, q2, q3, q4 FROM %s WHERE entity_cik = ?
		`, table), cik).Scan(&q1, &q2, &q3, &q4)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("filings available in %s cik %d: %w", table, cik, err)
		}
		for i, blob := range [][]byte{q1, q2, q3, q4} {
			if blob != nil {
				available = append(available, fmt.Sprintf("%s-Q%d", year, i+1))
			}
		}
	}

	if available == nil {
		available = []string{}
	}
	return available, nil
}
