package reconcile

import (
	"strings"
	"time"

	"github.com/jarmstrongdbrx/data-entry-app/core/catalog"
	"github.com/jarmstrongdbrx/data-entry-app/core/table"
)

// keySep joins composite key values into one map key. A unit separator never
// appears in sane key data and keeps composite parts from colliding.
const keySep = "\x1f"

// BuildChangeSet diffs the edited rows against the original snapshot and
// partitions them into inserts, updates, and deletes.
//
// A row's origin is decided by primary-key membership in the original
// snapshot, not by emptiness of the key value: a row whose key matches a
// snapshot row is an update (or a delete when flagged), anything else is an
// insert. Rows flagged for deletion that never existed are dropped as no-ops
// before classification.
//
// Audit timestamps are stamped here: inserts get CreatedAt and UpdatedAt set
// to now, updates get UpdatedAt refreshed and CreatedAt carried from the
// original row so a stale UI echo can never clobber it.
func BuildChangeSet(desc *catalog.Descriptor, columns []table.Column, original, edited []table.Row, now time.Time) (*ChangeSet, error) {
	hasCol := make(map[string]bool, len(columns))
	for _, c := range columns {
		hasCol[c.Name] = true
	}

	index := make(map[string]table.Row, len(original))
	for _, row := range original {
		key, ok, _ := rowKey(desc, row)
		if !ok {
			// A snapshot row with a null key should be impossible on a keyed
			// table; skip it rather than poison the index.
			continue
		}
		index[key] = row
	}

	stamp := table.Time(now.UTC())
	cs := &ChangeSet{}
	seen := make(map[string]bool, len(edited))

	for _, row := range edited {
		key, ok, badCol := rowKey(desc, row)
		flagged := row.DeleteFlagged()

		if !ok {
			if flagged {
				// Never existed, nothing to delete.
				continue
			}
			return nil, &KeyValueError{Table: desc.Qualified, Column: badCol}
		}

		_, existing := index[key]
		if flagged && !existing {
			// Delete of a row the snapshot never held is a no-op.
			continue
		}

		if seen[key] {
			return nil, &DuplicateKeyError{Table: desc.Qualified, Key: displayKey(desc, row)}
		}
		seen[key] = true

		switch {
		case flagged:
			cs.Deletes = append(cs.Deletes, deleteRow(desc, columns, row))
		case existing:
			rec := row.Clone()
			if hasCol[table.ColUpdatedAt] {
				rec[table.ColUpdatedAt] = stamp
			}
			if hasCol[table.ColCreatedAt] {
				rec[table.ColCreatedAt] = index[key][table.ColCreatedAt]
			}
			cs.Updates = append(cs.Updates, rec)
		default:
			rec := row.Clone()
			if hasCol[table.ColCreatedAt] {
				rec[table.ColCreatedAt] = stamp
			}
			if hasCol[table.ColUpdatedAt] {
				rec[table.ColUpdatedAt] = stamp
			}
			cs.Inserts = append(cs.Inserts, rec)
		}
	}

	return cs, nil
}

// rowKey builds the composite key of a row. ok is false when any key column
// is null or missing; badCol names the first such column.
func rowKey(desc *catalog.Descriptor, row table.Row) (key string, ok bool, badCol string) {
	parts := make([]string, 0, len(desc.PrimaryKey))
	for _, col := range desc.PrimaryKey {
		v, present := row[col]
		if !present || v.IsNull() {
			return "", false, col
		}
		parts = append(parts, v.Display())
	}
	return strings.Join(parts, keySep), true, ""
}

// displayKey renders a row's key for error messages, e.g. "service=auth, endpoint=/login".
func displayKey(desc *catalog.Descriptor, row table.Row) string {
	parts := make([]string, 0, len(desc.PrimaryKey))
	for _, col := range desc.PrimaryKey {
		parts = append(parts, col+"="+row[col].Display())
	}
	return strings.Join(parts, ", ")
}

// deleteRow builds the staged form of a deletion: key columns kept, every
// other column nulled. Only the key participates in the merge match.
func deleteRow(desc *catalog.Descriptor, columns []table.Column, row table.Row) table.Row {
	isKey := make(map[string]bool, len(desc.PrimaryKey))
	for _, col := range desc.PrimaryKey {
		isKey[col] = true
	}
	rec := make(table.Row, len(columns))
	for _, c := range columns {
		if isKey[c.Name] {
			rec[c.Name] = row[c.Name]
		} else {
			rec[c.Name] = table.Null()
		}
	}
	return rec
}
