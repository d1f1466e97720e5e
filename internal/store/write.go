package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/BitWorks/xbrlstudio/internal/filing"
)

// ErrNoCIK is returned by StoreFiling when neither the explicit
// argument nor the filing's own metadata yields an entity identifier.
var ErrNoCIK = errors.New("no cik available for filing")

// ErrNoPeriod is returned when the filing's fiscal period cannot be
// determined, so no year table can be resolved.
var ErrNoPeriod = errors.New("no determined period for filing")

// AddEntity inserts an entity row if absent. A pre-existing row is
// left untouched: name and parent are never overwritten here; that is
// what RenameEntity and UpdateParent are for. Returns whether the
// entity is now present.
func (s *Store) AddEntity(ctx context.Context, cik int, parentCIK *int, name string) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO entities (entity_cik, parent_cik, entity_name)
		VALUES (?, ?, ?)
		ON CONFLICT(entity_cik) DO NOTHING
	`, cik, parentCIK, name)
	if err != nil {
		return false, fmt.Errorf("add entity %d: %w", cik, err)
	}

	return true, nil
}

// AddFiling serializes the filing and writes it into the named quarter
// column of the year's table, creating the table first if needed. If a
// row for the cik already exists only that one column is updated; the
// other three quarters are untouched.
func (s *Store) AddFiling(ctx context.Context, year string, cik int, quarter string, f *filing.Filing) error {
	col, err := quarterColumn(quarter)
	if err != nil {
		return err
	}
	table, err := s.ensureFilingsTable(ctx, year)
	if err != nil {
		return err
	}
	db, err := s.conn()
	if err != nil {
		return err
	}

	blob, err := s.codec.Marshal(f)
	if err != nil {
		return fmt.Errorf("add filing: %w", err)
	}

	// Upsert keeps the partial-column contract: on conflict only the
	// named quarter is replaced.
	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (entity_cik, %s)
		VALUES (?, ?)
		ON CONFLICT(entity_cik) DO UPDATE SET %s = excluded.%s
	`, table, col, col, col), cik, blob)
	if err != nil {
		return fmt.Errorf("add filing %s %s cik %d: %w", year, quarter, cik, err)
	}

	return nil
}

// StoreFiling resolves the target cik (explicit argument, else first
// cik from the filing's own metadata), derives year and quarter from
// the extracted period, ensures the year table and entity row exist,
// writes the blob, and refreshes the entity display name from its
// most-recently-stored filing.
func (s *Store) StoreFiling(ctx context.Context, f *filing.Filing, cik *int) error {
	info := filing.ExtractInfo(f)

	target := 0
	switch {
	case cik != nil:
		target = *cik
	case len(info.CIKs) > 0:
		target = info.CIKs[0]
	default:
		return ErrNoCIK
	}

	year, quarter, ok := filing.ParsePeriod(info.Period)
	if !ok {
		return ErrNoPeriod
	}

	if _, err := s.AddEntity(ctx, target, info.ParentCIK, info.EntityName); err != nil {
		return err
	}
	if err := s.AddFiling(ctx, year, target, quarter, f); err != nil {
		return err
	}

	return s.refreshEntityName(ctx, target)
}

// StoreFilingManual writes a filing under operator-supplied metadata
// instead of the extracted kind: the given cik, name, and period win
// over whatever the document discloses. The subsequent name refresh
// still runs, so the visible name tracks the latest stored filing.
func (s *Store) StoreFilingManual(ctx context.Context, f *filing.Filing, cik int, name, period string) error {
	year, quarter, ok := filing.ParsePeriod(period)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoPeriod, period)
	}

	if _, err := s.AddEntity(ctx, cik, nil, name); err != nil {
		return err
	}
	if err := s.AddFiling(ctx, year, cik, quarter, f); err != nil {
		return err
	}

	return s.refreshEntityName(ctx, cik)
}

// refreshEntityName recomputes the entity's display name from its
// most-recently-stored filing, so the visible name always tracks the
// latest import. A missing last filing or an undetermined name leaves
// the current name in place.
func (s *Store) refreshEntityName(ctx context.Context, cik int) error {
	last, err := s.LastFiling(ctx, cik)
	if err != nil {
		return err
	}
	if last == nil {
		return nil
	}
	info := filing.ExtractInfo(last)
	if info.EntityName == "" {
		s.log.Warn("last filing discloses no entity name; keeping current name", "cik", cik)
		return nil
	}
	return s.RenameEntity(ctx, cik, info.EntityName)
}

// RenameEntity unconditionally overwrites the entity's display name.
// Filing data is untouched.
func (s *Store) RenameEntity(ctx context.Context, cik int, name string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		UPDATE entities SET entity_name = ? WHERE entity_cik = ?
	`, name, cik)
	if err != nil {
		return fmt.Errorf("rename entity %d: %w", cik, err)
	}
	return nil
}

// UpdateParent unconditionally overwrites the parent link of a child
// entity. A nil parent makes the child a root. Returns whether a row
// was actually affected, so callers can detect a no-op on an unknown
// cik.
//
// The store does not cycle-check parent reassignment; the cascade in
// RemoveEntity guards against a resulting cycle instead.
func (s *Store) UpdateParent(ctx context.Context, childCIK int, parentCIK *int) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, `
		UPDATE entities SET parent_cik = ? WHERE entity_cik = ?
	`, parentCIK, childCIK)
	if err != nil {
		return false, fmt.Errorf("update parent of %d: %w", childCIK, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update parent of %d: rows affected: %w", childCIK, err)
	}
	return n > 0, nil
}
