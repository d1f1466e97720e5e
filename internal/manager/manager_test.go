package manager

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BitWorks/xbrlstudio/internal/store"
	"github.com/BitWorks/xbrlstudio/internal/testutil"
)

// stubConfirmer answers every confirmation with a fixed verdict and
// records how often it was consulted.
type stubConfirmer struct {
	overwrite bool
	manual    bool

	overwriteCalls int
	manualCalls    int
	lastConflicts  []store.Conflict
}

func (c *stubConfirmer) ConfirmOverwrite(conflicts []store.Conflict) bool {
	c.overwriteCalls++
	c.lastConflicts = conflicts
	return c.overwrite
}

func (c *stubConfirmer) ConfirmManualOverwrite(name, period string) bool {
	c.manualCalls++
	return c.manual
}

func newTestManager(t *testing.T, confirm Confirmer, opts ...Option) *Manager {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, confirm, opts...)
}

func TestParseCached_SharesOneParse(t *testing.T) {
	m := newTestManager(t, &stubConfirmer{})
	path := testutil.WriteFactFile(t, testutil.DisclosureFiling("Example Corp", 320193, "2021", "Q2"))

	first, err := m.parseCached(path)
	require.NoError(t, err)
	second, err := m.parseCached(path)
	require.NoError(t, err)

	assert.Same(t, first, second, "repeated parse of the same path should hit the cache")
}

func TestParseCached_MissingFile(t *testing.T) {
	m := newTestManager(t, &stubConfirmer{})
	_, err := m.parseCached(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestReadPassthroughs(t *testing.T) {
	confirm := &stubConfirmer{}
	m := newTestManager(t, confirm)
	ctx := context.Background()

	path := testutil.WriteFactFile(t, testutil.DisclosureFiling("Example Corp", 320193, "2021", "Q2"))
	res, err := m.ImportFiling(ctx, path, nil)
	require.NoError(t, err)
	require.Equal(t, ImportStored, res)

	tree, err := m.EntityTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, 320193, tree[0].CIK)

	dict, err := m.EntityDict(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Example Corp": 320193}, dict)

	tokens, err := m.FilingsAvailable(ctx, 320193)
	require.NoError(t, err)
	assert.Equal(t, []string{"2021-Q2"}, tokens)

	name, found, err := m.NameFromCik(ctx, 320193)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Example Corp", name)

	f, err := m.GetFiling(ctx, 320193, "q22021")
	require.NoError(t, err)
	require.NotNil(t, f)

	require.NoError(t, m.RenameEntity(ctx, 320193, "Renamed Corp"))
	name, _, err = m.NameFromCik(ctx, 320193)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Corp", name)

	require.NoError(t, m.RemoveFiling(ctx, 320193, "q22021", nil))
	tokens, err = m.FilingsAvailable(ctx, 320193)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	require.NoError(t, m.RemoveEntity(ctx, 320193, nil))
	tree, err = m.EntityTree(ctx)
	require.NoError(t, err)
	assert.Empty(t, tree)
}
