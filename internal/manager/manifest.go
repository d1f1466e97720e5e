package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/BitWorks/xbrlstudio/internal/filing"
	"github.com/BitWorks/xbrlstudio/internal/store"
)

// Manifest describes a batch of fact documents to import. Paths are
// resolved relative to the manifest file's directory.
type Manifest struct {
	// Name labels the batch in logs. Optional.
	Name string `yaml:"name,omitempty"`

	// Filings lists the documents, in import order.
	Filings []ManifestEntry `yaml:"filings"`
}

// ManifestEntry is one document in a batch.
type ManifestEntry struct {
	// Path to the fact document.
	Path string `yaml:"path"`

	// CIK optionally overrides the entity identifier for this entry.
	CIK *int `yaml:"cik,omitempty"`

	// Instance optionally names the source instance document. When
	// set, the entry is skipped unless the document is recognized as
	// an instance document.
	Instance string `yaml:"instance,omitempty"`
}

// LoadManifest reads and validates a batch manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Filings) == 0 {
		return nil, fmt.Errorf("manifest %s lists no filings", path)
	}
	for i, e := range m.Filings {
		if e.Path == "" {
			return nil, fmt.Errorf("manifest %s: entry %d has no path", path, i)
		}
	}
	return &m, nil
}

// EntryError records a batch entry that could not be imported.
type EntryError struct {
	Path string
	Err  error
}

// BatchResult summarizes a batch import.
type BatchResult struct {
	// BatchID correlates the batch's log lines.
	BatchID string
	Stored  int
	Skipped int
	Errors  []EntryError
}

// ImportBatch imports every document in a manifest, one fully parsed,
// checked, and written before the next begins. Per-entry failures are
// recorded and do not abort the batch. Progress reports the fraction
// of entries processed.
func (m *Manager) ImportBatch(ctx context.Context, manifestPath string, progress store.ProgressFunc) (BatchResult, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{BatchID: uuid.NewString()}
	base := filepath.Dir(manifestPath)
	log := m.log.With("batch", result.BatchID, "manifest", manifest.Name)
	log.Info("batch import started", "entries", len(manifest.Filings))

	for i, entry := range manifest.Filings {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		path := entry.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}

		if entry.Instance != "" {
			instance := entry.Instance
			if !filepath.IsAbs(instance) {
				instance = filepath.Join(base, instance)
			}
			if !filing.IsInstanceDocument(instance) {
				log.Warn("skipping entry: source is not an instance document", "path", path)
				result.Skipped++
				reportBatchProgress(progress, i+1, len(manifest.Filings))
				continue
			}
		}

		outcome, err := m.ImportFiling(ctx, path, entry.CIK)
		switch {
		case err != nil:
			log.Warn("batch entry failed", "path", path, "error", err)
			result.Errors = append(result.Errors, EntryError{Path: path, Err: err})
		case outcome == ImportStored:
			result.Stored++
		default:
			result.Skipped++
		}

		reportBatchProgress(progress, i+1, len(manifest.Filings))
	}

	log.Info("batch import finished",
		"stored", result.Stored, "skipped", result.Skipped, "failed", len(result.Errors))
	return result, nil
}

func reportBatchProgress(progress store.ProgressFunc, done, total int) {
	if progress != nil && total > 0 {
		progress(100 * done / total)
	}
}
