// Package manager sequences metadata extraction and storage-engine
// calls, and applies the user-confirmation policy for destructive or
// duplicate operations. The yes/no decision itself always belongs to a
// caller-supplied Confirmer; the manager only decides when to ask.
package manager

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/BitWorks/xbrlstudio/internal/filing"
	"github.com/BitWorks/xbrlstudio/internal/store"
)

// Confirmer supplies the overwrite decisions for import paths. The
// orchestration layer (CLI, GUI) implements it; the manager never
// prompts on its own.
type Confirmer interface {
	// ConfirmOverwrite is asked before an automatic import overwrites
	// the listed pre-existing filings.
	ConfirmOverwrite(conflicts []store.Conflict) bool

	// ConfirmManualOverwrite is asked before a manual import
	// overwrites the filing stored for the given name and period.
	ConfirmManualOverwrite(name, period string) bool
}

// Manager is the facade over the storage engine. It holds no state of
// its own beyond the store handle, the confirmation provider, and a
// short-lived parsed-filing cache that lets the existence check and
// the subsequent store share one parse.
type Manager struct {
	store   *store.Store
	confirm Confirmer
	parsed  *gocache.Cache
	log     *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithCacheTTL sets the parsed-filing cache lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.parsed = gocache.New(ttl, 2*ttl) }
}

// New creates a Manager over an open store.
func New(st *store.Store, confirm Confirmer, opts ...Option) *Manager {
	m := &Manager{
		store:   st,
		confirm: confirm,
		parsed:  gocache.New(5*time.Minute, 10*time.Minute),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store exposes the underlying storage engine for read-only callers.
func (m *Manager) Store() *store.Store {
	return m.store
}

// parseCached parses a fact document, serving repeated requests for
// the same path from the cache. The cache key is the absolute path.
func (m *Manager) parseCached(path string) (*filing.Filing, error) {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	if v, ok := m.parsed.Get(key); ok {
		return v.(*filing.Filing), nil
	}
	f, err := filing.ParseFactFile(path)
	if err != nil {
		return nil, err
	}
	m.parsed.Set(key, f, gocache.DefaultExpiration)
	return f, nil
}

// EntityTree returns every entity row.
func (m *Manager) EntityTree(ctx context.Context) ([]store.Entity, error) {
	return m.store.EntityTree(ctx)
}

// EntityDict returns the name→cik lookup map.
func (m *Manager) EntityDict(ctx context.Context) (map[string]int, error) {
	return m.store.EntityDict(ctx)
}

// FilingsAvailable lists the "YYYY-Qn" tokens stored for an entity.
func (m *Manager) FilingsAvailable(ctx context.Context, cik int) ([]string, error) {
	return m.store.FilingsAvailable(ctx, cik)
}

// GetFiling fetches one stored filing; nil when absent.
func (m *Manager) GetFiling(ctx context.Context, cik int, period string) (*filing.Filing, error) {
	return m.store.SelectFiling(ctx, cik, period)
}

// NameFromCik resolves an entity's display name.
func (m *Manager) NameFromCik(ctx context.Context, cik int) (string, bool, error) {
	return m.store.NameFromCik(ctx, cik)
}

// RemoveEntity removes an entity and its whole subtree.
func (m *Manager) RemoveEntity(ctx context.Context, cik int, progress store.ProgressFunc) error {
	return m.store.RemoveEntity(ctx, cik, progress)
}

// RemoveFiling removes a quarter ("qNYYYY") or a whole year ("YYYY")
// of stored filings for an entity.
func (m *Manager) RemoveFiling(ctx context.Context, cik int, period string, progress store.ProgressFunc) error {
	return m.store.RemoveFiling(ctx, cik, period, progress)
}

// RenameEntity overwrites an entity's display name.
func (m *Manager) RenameEntity(ctx context.Context, cik int, name string) error {
	return m.store.RenameEntity(ctx, cik, name)
}

// UpdateParent rewires an entity under a new parent (nil for root).
func (m *Manager) UpdateParent(ctx context.Context, childCIK int, parentCIK *int) (bool, error) {
	return m.store.UpdateParent(ctx, childCIK, parentCIK)
}
