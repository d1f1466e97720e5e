package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/BitWorks/xbrlstudio/internal/filing"
)

// ImportResult reports how an import attempt ended.
type ImportResult int

const (
	// ImportStored means the filing was written.
	ImportStored ImportResult = iota

	// ImportSkipped means a pre-existing filing was found and the
	// confirmation predicate declined the overwrite. Not an error.
	ImportSkipped
)

// NotImportableError reports a document whose extracted metadata is
// insufficient for automatic import. The orchestration layer reacts by
// falling back to manual input.
type NotImportableError struct {
	Path    string
	Missing []string
}

func (e *NotImportableError) Error() string {
	return fmt.Sprintf("filing %s is not importable: missing %s", e.Path, strings.Join(e.Missing, ", "))
}

// ImportFiling parses the fact document at path and stores it. If any
// prior filing already occupies the target (cik, period) slots the
// caller-supplied confirmation predicate decides; a decline aborts
// without error. An explicit cik overrides the cik choice but the rest
// of the metadata still comes from the document.
func (m *Manager) ImportFiling(ctx context.Context, path string, cik *int) (ImportResult, error) {
	f, err := m.parseCached(path)
	if err != nil {
		return ImportSkipped, err
	}

	info := filing.ExtractInfo(f)
	missing := info.Missing()
	if cik != nil {
		// The operator supplied the cik; only name and period must
		// come from the document.
		missing = nil
		if info.EntityName == "" {
			missing = append(missing, "name")
		}
		if info.Period == "" {
			missing = append(missing, "period")
		}
	}
	if len(missing) > 0 {
		return ImportSkipped, &NotImportableError{Path: path, Missing: missing}
	}

	conflicts, err := m.store.ExistsForImport(ctx, f, cik)
	if err != nil {
		return ImportSkipped, err
	}
	if len(conflicts) > 0 && !m.confirm.ConfirmOverwrite(conflicts) {
		m.log.Info("import declined by operator", "path", path)
		return ImportSkipped, nil
	}

	if err := m.store.StoreFiling(ctx, f, cik); err != nil {
		return ImportSkipped, err
	}
	m.log.Info("filing imported", "path", path, "period", info.Period)
	return ImportStored, nil
}

// ImportManual stores the document at path under operator-supplied
// metadata. The existence check is against the single given cik, and
// the manual confirmation predicate gates the overwrite.
func (m *Manager) ImportManual(ctx context.Context, cik int, name, period, path string) (ImportResult, error) {
	period = strings.ToLower(period)
	if _, _, ok := filing.ParsePeriod(period); !ok {
		return ImportSkipped, fmt.Errorf("invalid period %q: want qNYYYY", period)
	}

	f, err := m.parseCached(path)
	if err != nil {
		return ImportSkipped, err
	}

	existing, err := m.store.SelectFiling(ctx, cik, period)
	if err != nil {
		return ImportSkipped, err
	}
	if existing != nil && !m.confirm.ConfirmManualOverwrite(name, period) {
		m.log.Info("manual import declined by operator", "path", path, "cik", cik)
		return ImportSkipped, nil
	}

	if err := m.store.StoreFilingManual(ctx, f, cik, name, period); err != nil {
		return ImportSkipped, err
	}
	m.log.Info("filing imported manually", "path", path, "cik", cik, "period", period)
	return ImportStored, nil
}
