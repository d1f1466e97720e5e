// Package store owns the on-disk filing database: the entity hierarchy
// table plus one dynamically-created table per fiscal year of filing
// data.
//
// Schema:
//   - entities(entity_cik INTEGER PRIMARY KEY, parent_cik INTEGER,
//     entity_name TEXT): parent_cik is self-referential and nullable;
//     NULL marks a root, so the entities form a forest.
//   - filings<YYYY>(entity_cik INTEGER PRIMARY KEY, q1 BLOB, q2 BLOB,
//     q3 BLOB, q4 BLOB): created lazily on first write for that year.
//     A NULL quarter column means no filing stored for that quarter.
//
// Filings are persisted only as serialized blobs inside quarter
// columns (see Codec), never as first-class fact rows. Quarter writes
// are partial-row updates: the other three columns of a row are never
// touched, because quarters of the same fiscal year arrive
// independently.
//
// Schema introspection is re-queried from sqlite_master on every call
// rather than cached, so externally-applied schema changes (including
// the drop-empty-table sweep after a removal) are always observed.
//
// The store assumes a single logical writer in a single process. All
// operations are synchronous; long-running removals report incremental
// progress through a caller-supplied sink. Per-table failures during
// cascade sweeps are logged and skipped: forward progress over strict
// atomicity.
package store
