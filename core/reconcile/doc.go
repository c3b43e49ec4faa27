// Package reconcile turns an edited in-memory row set into a staged change
// set and applies it to the warehouse with a single merge.
//
// The engine works against tables whose key and column sets are discovered
// at runtime, so every call receives a catalog descriptor and the snapshot's
// column list explicitly.
//
// # Protocol
//
// One save runs in four phases:
//
//  1. Classify: each edited row resolves to exactly one of insert, update,
//     or delete. Origin is decided by key membership in the original
//     snapshot. Rows flagged for deletion that never existed are filtered
//     out as no-ops, and duplicate source keys reject the save before any
//     SQL runs.
//
//  2. Stamp: inserts get CreatedAt and UpdatedAt set to the save's UTC
//     execution time; updates get UpdatedAt refreshed and CreatedAt carried
//     from the original row.
//
//  3. Stage: the union of all three partitions, marked with is_delete, is
//     materialized as a temporary view over a VALUES list. Every cell goes
//     through the value formatter; operator text with embedded quotes is
//     escaped, never trusted.
//
//  4. Merge: one MERGE INTO keyed on the primary key deletes matched
//     flagged rows, overwrites matched rows, and inserts the rest. The
//     staging view is dropped afterwards regardless of outcome.
//
// Concurrent operators are not coordinated: the diff is computed against a
// snapshot taken earlier in the session, so the last writer wins.
package reconcile
