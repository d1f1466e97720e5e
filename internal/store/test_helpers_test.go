package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/BitWorks/xbrlstudio/internal/filing"
	"github.com/BitWorks/xbrlstudio/internal/testutil"
)

// createTestStore creates a fresh on-disk store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// storeQuarter imports one disclosure filing for the given entity and
// period focus, failing the test on error.
func storeQuarter(t *testing.T, s *Store, name string, cik int, year, quarter string) {
	t.Helper()
	f := testutil.DisclosureFiling(name, cik, year, quarter)
	if err := s.StoreFiling(context.Background(), f, nil); err != nil {
		t.Fatalf("StoreFiling(%s %s %s) failed: %v", name, year, quarter, err)
	}
}

// stubFiling builds a disclosure filing without storing it.
func stubFiling(t *testing.T, name string, cik int, year, quarter string) *filing.Filing {
	t.Helper()
	return testutil.DisclosureFiling(name, cik, year, quarter)
}

// extractName reads the registrant name disclosed in a filing.
func extractName(f *filing.Filing) string {
	return filing.ExtractInfo(f).EntityName
}

// addChild inserts an entity under a parent, failing the test on error.
func addChild(t *testing.T, s *Store, cik, parent int, name string) {
	t.Helper()
	if _, err := s.AddEntity(context.Background(), cik, &parent, name); err != nil {
		t.Fatalf("AddEntity(%d) failed: %v", cik, err)
	}
}
