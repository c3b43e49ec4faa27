// Package table defines the dynamic row model shared by the catalog
// inspector, snapshot reader, and reconciliation engine.
//
// Column sets are unknown at compile time, so a row is a map from column
// name to a tagged scalar Value (string, number, bool, timestamp, or null).
// Every operation that formats or compares cells dispatches on the tag.
//
// The package also owns the value formatter: Literal renders a Value as a
// SQL literal for the staging relation, with quote escaping for strings and
// a fixed timestamp grammar. Unrecognized kinds fail fast with FormatError
// rather than being silently stringified.
package table
