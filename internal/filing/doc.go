// Package filing defines the in-memory representation of a business
// filing: an ordered list of disclosed facts parsed from a fact
// document, plus the metadata extraction used to key a filing by
// reporting entity and fiscal period.
//
// Types in this package have value semantics: two facts with identical
// attributes are indistinguishable, and filing equality delegates to
// the fact list. This is what makes deduplication and round-trip tests
// meaningful: a filing read back from storage compares equal to the
// one written.
//
// Parsing is all-or-nothing. A malformed fact document yields a
// *ParseError and no partial filing.
package filing
