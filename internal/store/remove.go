package store

import (
	"context"
	"fmt"

	"github.com/BitWorks/xbrlstudio/internal/filing"
)

// ProgressFunc receives percent values in [0,100] as a long-running
// removal advances. A nil sink is allowed.
type ProgressFunc func(percent int)

func (p ProgressFunc) report(percent int) {
	if p != nil {
		p(percent)
	}
}

// CountEntityTree returns the size of the subtree rooted at cik,
// counting the entity itself and every descendant. Used to precompute
// the denominator for removal progress. A parent-pointer cycle is
// counted once and skipped.
func (s *Store) CountEntityTree(ctx context.Context, cik int) (int, error) {
	visited := make(map[int]bool)
	return s.countEntityTree(ctx, cik, visited)
}

func (s *Store) countEntityTree(ctx context.Context, cik int, visited map[int]bool) (int, error) {
	if visited[cik] {
		return 0, nil
	}
	visited[cik] = true

	count := 1
	children, err := s.childCIKs(ctx, cik)
	if err != nil {
		return 0, err
	}
	for _, child := range children {
		n, err := s.countEntityTree(ctx, child, visited)
		if err != nil {
			return 0, err
		}
		count += n
	}
	return count, nil
}

// childCIKs returns the ciks whose parent_cik equals the given cik.
func (s *Store) childCIKs(ctx context.Context, cik int) ([]int, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT entity_cik FROM entities WHERE parent_cik = ? ORDER BY entity_cik ASC
	`, cik)
	if err != nil {
		return nil, fmt.Errorf("select children of %d: %w", cik, err)
	}
	defer rows.Close()

	var children []int
	for rows.Next() {
		var child int
		if err := rows.Scan(&child); err != nil {
			return nil, fmt.Errorf("scan child cik: %w", err)
		}
		children = append(children, child)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children of %d: %w", cik, err)
	}
	return children, nil
}

// RemoveEntity deletes the entity, all of its filing rows, and
// recursively every descendant, reporting monotonically increasing
// progress through the sink. Per-table delete failures are logged and
// skipped; the cascade continues best-effort and is never surfaced as
// a hard failure. After the whole subtree is gone, filing-year tables
// left empty are dropped and the database is compacted.
//
// The data model does not prevent parent_cik cycles. The cascade
// tracks visited ciks and reports a revisit as a data-integrity error
// rather than following it.
func (s *Store) RemoveEntity(ctx context.Context, cik int, progress ProgressFunc) error {
	total, err := s.CountEntityTree(ctx, cik)
	if err != nil {
		return err
	}
	if total == 0 {
		total = 1
	}

	visited := make(map[int]bool)
	completed := 0
	s.removeEntityRecursive(ctx, cik, visited, &completed, total, progress)

	s.dropEmptyFilingTables(ctx)
	s.vacuum(ctx)
	progress.report(100)

	return nil
}

func (s *Store) removeEntityRecursive(ctx context.Context, cik int, visited map[int]bool, completed *int, total int, progress ProgressFunc) {
	if visited[cik] {
		s.log.Error("entity tree cycle detected during removal; not following", "cik", cik)
		return
	}
	visited[cik] = true

	// Children must be collected before the entities row goes away.
	children, err := s.childCIKs(ctx, cik)
	if err != nil {
		s.log.Warn("collect children failed; skipping descent", "cik", cik, "error", err)
		children = nil
	}

	db, err := s.conn()
	if err != nil {
		s.log.Warn("remove entity: store closed mid-cascade", "cik", cik)
		return
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM entities WHERE entity_cik = ?`, cik); err != nil {
		s.log.Warn("delete entity row failed; continuing", "cik", cik, "error", err)
	}

	tables, err := s.filingYearTables(ctx)
	if err != nil {
		s.log.Warn("list filing tables failed; skipping filing deletes", "cik", cik, "error", err)
	}
	for _, table := range tables {
		if _, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE entity_cik = ?`, table), cik); err != nil {
			s.log.Warn("delete filing row failed; continuing", "table", table, "cik", cik, "error", err)
		}
	}

	*completed++
	progress.report(100 * *completed / total)

	for _, child := range children {
		s.removeEntityRecursive(ctx, child, visited, completed, total, progress)
	}
}

// RemoveFiling clears stored filing data for one entity. A 6-character
// "qNYYYY" period nulls a single quarter column; a bare 4-character
// year deletes the whole year row. Progress is reported in three fixed
// stages (begin, after delete, after compaction) regardless of data
// volume. The entities row is untouched.
func (s *Store) RemoveFiling(ctx context.Context, cik int, period string, progress ProgressFunc) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	progress.report(33)

	switch len(period) {
	case 6:
		year, quarter, ok := filingPeriodParts(period)
		if !ok {
			return fmt.Errorf("invalid period %q", period)
		}
		table := filingsTableName(year)
		exists, err := s.TableExists(ctx, table)
		if err != nil {
			return err
		}
		if exists {
			if _, err := db.ExecContext(ctx, fmt.Sprintf(`
				UPDATE %s SET %s = NULL WHERE entity_cik = ?
			`, table, quarter), cik); err != nil {
				s.log.Warn("clear quarter failed; continuing", "table", table, "cik", cik, "error", err)
			}
		}
	case 4:
		if !filing.IsYear(period) {
			return fmt.Errorf("invalid period %q", period)
		}
		table := filingsTableName(period)
		exists, err := s.TableExists(ctx, table)
		if err != nil {
			return err
		}
		if exists {
			if _, err := db.ExecContext(ctx, fmt.Sprintf(`
				DELETE FROM %s WHERE entity_cik = ?
			`, table), cik); err != nil {
				s.log.Warn("delete year row failed; continuing", "table", table, "cik", cik, "error", err)
			}
		}
	default:
		return fmt.Errorf("invalid period %q", period)
	}

	s.dropEmptyFilingTables(ctx)
	progress.report(66)

	s.vacuum(ctx)
	progress.report(100)

	return nil
}

// dropEmptyFilingTables drops every filings-year table that no longer
// holds any row, so a table is never left structurally empty. Errors
// are logged and skipped.
func (s *Store) dropEmptyFilingTables(ctx context.Context) {
	db, err := s.conn()
	if err != nil {
		return
	}
	tables, err := s.filingYearTables(ctx)
	if err != nil {
		s.log.Warn("list filing tables for drop sweep failed", "error", err)
		return
	}
	for _, table := range tables {
		var one int
		err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT 1 FROM %s LIMIT 1`, table)).Scan(&one)
		if err == nil {
			continue // has rows
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE %s`, table)); err != nil {
			s.log.Warn("drop empty filing table failed; continuing", "table", table, "error", err)
		}
	}
}

// vacuum reclaims space after removals. Best-effort.
func (s *Store) vacuum(ctx context.Context) {
	db, err := s.conn()
	if err != nil {
		return
	}
	if _, err := db.ExecContext(ctx, `VACUUM`); err != nil {
		s.log.Warn("vacuum failed", "error", err)
	}
}

// filingPeriodParts splits a validated 6-char period into a year and a
// quarter column name.
func filingPeriodParts(period string) (year, quarter string, ok bool) {
	y, q, ok := filing.ParsePeriod(period)
	if !ok {
		return "", "", false
	}
	col, err := quarterColumn(q)
	if err != nil {
		return "", "", false
	}
	return y, col, true
}
