// Package editor is the configuration table editor feature.
//
// It exposes the editing contract over HTTP: list the editable tables, read
// a fresh snapshot of one, and save an edited working copy back. The save
// path reads the current state, archives it when the snapshot archive is
// enabled, diffs the submitted rows against it, and hands the change set to
// the reconciliation engine. The response carries the applied counts and
// the refreshed post-merge state so the grid can redraw immediately.
//
// The feature is schema-agnostic: tables, columns, and primary keys are all
// discovered at runtime through the catalog inspector.
package editor
