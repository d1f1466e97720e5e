package filing

import (
	"hash/fnv"
)

// Fact represents a single disclosed data point. All attributes are
// stored verbatim as strings; no type coercion happens at parse time.
// Value may hold a number, a plain string, or a rich-text block; see
// IsAlphaOrHTML for the classification used by display code.
type Fact struct {
	Label            string `json:"label,omitempty"`
	Name             string `json:"name"`
	ContextRef       string `json:"context_ref,omitempty"`
	UnitRef          string `json:"unit_ref,omitempty"`
	Decimals         string `json:"decimals,omitempty"`
	Precision        string `json:"precision,omitempty"`
	Lang             string `json:"lang,omitempty"`
	Value            string `json:"value,omitempty"`
	EntityScheme     string `json:"entity_scheme,omitempty"`
	EntityIdentifier string `json:"entity_identifier,omitempty"`
	Period           string `json:"period,omitempty"`
	Dimensions       string `json:"dimensions,omitempty"`
}

// Key returns the full attribute tuple. Two facts with equal keys are
// indistinguishable.
func (f Fact) Key() [12]string {
	return [12]string{
		f.Label, f.Name, f.ContextRef, f.UnitRef,
		f.Decimals, f.Precision, f.Lang, f.Value,
		f.EntityScheme, f.EntityIdentifier, f.Period, f.Dimensions,
	}
}

// Equal reports whether two facts have identical attribute tuples.
func (f Fact) Equal(other Fact) bool {
	return f == other
}

// Hash returns a stable hash over the attribute tuple so that equal
// facts hash equal under set operations.
func (f Fact) Hash() uint64 {
	h := fnv.New64a()
	for _, field := range f.Key() {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// Filing is an ordered collection of facts. A filing has no identity
// of its own until paired with an extracted (entity cik, period).
type Filing struct {
	Facts []Fact `json:"facts"`
}

// NewFiling wraps a fact list in a Filing.
func NewFiling(facts []Fact) *Filing {
	return &Filing{Facts: facts}
}

// Equal reports whether two filings contain the same facts in the
// same order.
func (f *Filing) Equal(other *Filing) bool {
	if f == nil || other == nil {
		return f == other
	}
	if len(f.Facts) != len(other.Facts) {
		return false
	}
	for i := range f.Facts {
		if f.Facts[i] != other.Facts[i] {
			return false
		}
	}
	return true
}

// Hash combines the fact hashes in order.
func (f *Filing) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, fact := range f.Facts {
		v := fact.Hash()
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Len returns the number of facts in the filing.
func (f *Filing) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Facts)
}
