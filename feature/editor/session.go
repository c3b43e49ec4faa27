package editor

import (
	"strings"

	"github.com/jarmstrongdbrx/data-entry-app/core/catalog"
	"github.com/jarmstrongdbrx/data-entry-app/core/table"
)

// Session is the operator's in-memory working copy of one table: the
// snapshot it started from plus the mutations made since. It is consumed by
// the reconciliation engine at save time and discarded.
type Session struct {
	desc     *catalog.Descriptor
	snapshot *Snapshot
	working  []table.Row
}

// NewSession starts a session over a snapshot. The working copy begins as a
// clone of the snapshot rows.
func NewSession(desc *catalog.Descriptor, snap *Snapshot) *Session {
	working := make([]table.Row, len(snap.Rows))
	for i, row := range snap.Rows {
		working[i] = row.Clone()
	}
	return &Session{desc: desc, snapshot: snap, working: working}
}

// Replace swaps in a whole working copy, as submitted by the UI grid.
func (s *Session) Replace(rows []table.Row) {
	s.working = rows
}

// Append adds a new row to the working copy.
func (s *Session) Append(row table.Row) {
	s.working = append(s.working, row)
}

// SetCell mutates one cell of the working copy.
func (s *Session) SetCell(i int, column string, v table.Value) {
	if i >= 0 && i < len(s.working) {
		s.working[i][column] = v
	}
}

// FlagDelete marks a working row for deletion.
func (s *Session) FlagDelete(i int) {
	if i >= 0 && i < len(s.working) {
		s.working[i][table.ColDelete] = table.Bool(true)
	}
}

// Rows returns the current working copy.
func (s *Session) Rows() []table.Row {
	return s.working
}

// EditedRows materializes the rows handed to the reconciliation engine: the
// working copy plus an explicit delete row for every snapshot key the
// working copy no longer contains. Removing a row from the grid and flagging
// it is_delete are the same edit.
func (s *Session) EditedRows() []table.Row {
	keep := make(map[string]bool, len(s.working))
	for _, row := range s.working {
		if key, ok := s.key(row); ok {
			keep[key] = true
		}
	}

	edited := make([]table.Row, 0, len(s.working))
	edited = append(edited, s.working...)

	for _, row := range s.snapshot.Rows {
		key, ok := s.key(row)
		if !ok || keep[key] {
			continue
		}
		del := row.Clone()
		del[table.ColDelete] = table.Bool(true)
		edited = append(edited, del)
	}

	return edited
}

// key builds a row's composite primary-key string; ok is false when any key
// column is null or missing.
func (s *Session) key(row table.Row) (string, bool) {
	parts := make([]string, 0, len(s.desc.PrimaryKey))
	for _, col := range s.desc.PrimaryKey {
		v, present := row[col]
		if !present || v.IsNull() {
			return "", false
		}
		parts = append(parts, v.Display())
	}
	return strings.Join(parts, "\x1f"), true
}
