package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/jarmstrongdbrx/data-entry-app/core/catalog"
	"github.com/jarmstrongdbrx/data-entry-app/core/table"

	"gorm.io/gorm"
)

// Snapshot is the full contents of one table at read time: the column set
// with semantic kinds as reported by the warehouse, and every row.
type Snapshot struct {
	Columns []table.Column
	Rows    []table.Row
}

// Kind returns the semantic kind of a column, or KindNull when the column
// is not part of the snapshot.
func (s *Snapshot) Kind(column string) (table.Kind, bool) {
	for _, c := range s.Columns {
		if c.Name == column {
			return c.Kind, true
		}
	}
	return table.KindNull, false
}

// ReadSnapshot executes an unfiltered select and returns every row. There is
// no caching: edits from concurrent sessions and the just-completed save
// must be visible on the next read.
func ReadSnapshot(ctx context.Context, db *gorm.DB, desc *catalog.Descriptor) (*Snapshot, error) {
	for _, part := range strings.Split(desc.Qualified, ".") {
		if !table.ValidIdent(part) {
			return nil, fmt.Errorf("invalid table name %q", desc.Qualified)
		}
	}

	rows, err := db.WithContext(ctx).Raw("SELECT * FROM " + desc.Qualified).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", desc.Qualified, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", desc.Qualified, err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types of %s: %w", desc.Qualified, err)
	}

	columns := make([]table.Column, len(names))
	known := make([]bool, len(names))
	for i, name := range names {
		kind, ok := kindForType(types[i].DatabaseTypeName())
		columns[i] = table.Column{Name: name, Kind: kind}
		known[i] = ok
	}

	snap := &Snapshot{Columns: columns}
	for rows.Next() {
		raw := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", desc.Qualified, err)
		}

		rec := make(table.Row, len(names))
		for i, name := range names {
			var v table.Value
			if known[i] {
				v, err = table.Coerce(raw[i], snap.Columns[i].Kind)
				if err != nil {
					// The declared type lied about this cell; keep the data
					// by falling back to the value's own shape.
					v = table.Detect(raw[i])
				}
			} else {
				v = table.Detect(raw[i])
				// Drivers that report no column type (sqlite expressions,
				// mocks) reveal the kind through the first non-null value.
				if !v.IsNull() && snap.Columns[i].Kind == table.KindNull {
					snap.Columns[i].Kind = v.Kind
				}
			}
			rec[name] = v
		}
		snap.Rows = append(snap.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", desc.Qualified, err)
	}

	// Columns that stayed untyped (all nulls, no declared type) are treated
	// as text.
	for i := range snap.Columns {
		if !known[i] && snap.Columns[i].Kind == table.KindNull {
			snap.Columns[i].Kind = table.KindString
		}
	}

	return snap, nil
}

// kindForType maps a driver-reported column type to a semantic kind. ok is
// false when the driver reported nothing useful.
func kindForType(dbType string) (table.Kind, bool) {
	t := strings.ToUpper(dbType)
	switch {
	case t == "":
		return table.KindNull, false
	case strings.Contains(t, "BOOL"):
		return table.KindBool, true
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"),
		strings.Contains(t, "CLOB"), strings.Contains(t, "JSON"),
		strings.Contains(t, "ENUM"), strings.Contains(t, "SET"),
		strings.Contains(t, "UUID"):
		return table.KindString, true
	case strings.Contains(t, "INT"), strings.Contains(t, "DECIMAL"),
		strings.Contains(t, "NUMERIC"), strings.Contains(t, "FLOAT"),
		strings.Contains(t, "DOUBLE"), strings.Contains(t, "REAL"),
		strings.Contains(t, "NUMBER"):
		return table.KindNumber, true
	case strings.Contains(t, "TIMESTAMP"), strings.Contains(t, "DATETIME"),
		strings.Contains(t, "DATE"):
		return table.KindTime, true
	default:
		return table.KindString, true
	}
}
