// Package catalog discovers editable tables and their primary keys from
// warehouse metadata.
//
// The whole editor is schema-agnostic: nothing about a table's shape is
// known until the inspector reads it from information_schema (or PRAGMA
// table_info under sqlite). The Descriptor it produces, a qualified name
// plus the ordered key columns, is threaded explicitly through every
// snapshot read and save; no component ever assumes a fixed key shape.
//
// Descriptors are cached process-wide with singleflight stampede
// protection. A table without a declared primary key is reported as
// NoPrimaryKeyError so the caller can skip it with a warning instead of
// failing the whole session.
package catalog
