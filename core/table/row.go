package table

import "regexp"

// Reserved column names. CreatedAt and UpdatedAt are system-managed audit
// timestamps; ColDelete is the in-memory deletion marker carried into the
// staging relation, it is never a column of the target table.
const (
	ColCreatedAt = "CreatedAt"
	ColUpdatedAt = "UpdatedAt"
	ColDelete    = "is_delete"
)

// Row is one table row, column name to tagged scalar value. Rows are built
// per read, mutated in memory by the edit session, and consumed by the
// reconciliation engine at save time.
type Row map[string]Value

// Clone returns a shallow copy of the row (values are immutable).
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// DeleteFlagged reports whether the row carries is_delete = true.
func (r Row) DeleteFlagged() bool {
	v, ok := r[ColDelete]
	return ok && v.Kind == KindBool && v.Bool
}

// Column describes one column of a snapshot: its name and semantic kind as
// reported by the warehouse.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"-"`
}

// identRe matches identifiers safe to interpolate into SQL text. Table and
// column names come from catalog metadata, but they still pass through here
// before statement assembly.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ValidIdent reports whether s is a safely embeddable SQL identifier.
func ValidIdent(s string) bool {
	return identRe.MatchString(s)
}
