// Package testutil provides filing and fact builders shared by tests
// across packages.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/BitWorks/xbrlstudio/internal/filing"
)

// Fact builds a minimal fact with just a disclosure tag and a value.
func Fact(name, value string) filing.Fact {
	return filing.Fact{Name: name, Value: value}
}

// DisclosureFiling builds a filing carrying the standard metadata
// disclosures plus one revenue fact, the shape most import tests need.
// periodFocus may be "Q1".."Q4" or "FY".
func DisclosureFiling(name string, cik int, yearFocus, periodFocus string) *filing.Filing {
	return filing.NewFiling([]filing.Fact{
		Fact("dei:EntityRegistrantName", name),
		Fact("dei:EntityCentralIndexKey", fmt.Sprintf("%d", cik)),
		Fact("dei:DocumentFiscalYearFocus", yearFocus),
		Fact("dei:DocumentFiscalPeriodFocus", periodFocus),
		Fact("us-gaap:Revenues", "1000000"),
	})
}

// WriteFactFile renders a filing's metadata facts as a fact document
// in a temp dir and returns the path.
func WriteFactFile(t *testing.T, f *filing.Filing) string {
	t.Helper()
	doc := "<factList>\n"
	for _, fact := range f.Facts {
		doc += fmt.Sprintf("  <fact name=%q>\n", fact.Name)
		if fact.Label != "" {
			doc += fmt.Sprintf("    <label>%s</label>\n", fact.Label)
		}
		if fact.Value != "" {
			doc += fmt.Sprintf("    <value>%s</value>\n", fact.Value)
		}
		doc += "  </fact>\n"
	}
	doc += "</factList>\n"

	path := filepath.Join(t.TempDir(), "facts.xml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fact file: %v", err)
	}
	return path
}
