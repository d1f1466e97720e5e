package filing

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IsAlphaOrHTML reports whether a fact carries a textual or rich-text
// value rather than a numeric one. Display code groups unset values
// with the textual facts. This is a pure classification predicate over
// Fact.Value: numeric-parseable (after stripping thousands
// separators) means false, everything else true.
func IsAlphaOrHTML(f Fact) bool {
	v := strings.ReplaceAll(f.Value, ",", "")
	if strings.TrimSpace(v) == "" {
		return true
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
		return true
	}
	return false
}

// ExtractText flattens a rich-text fact value to plain text, stripping
// markup and collapsing whitespace. Values that don't parse as markup
// are returned unchanged.
func ExtractText(value string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
	if err != nil {
		return value
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
