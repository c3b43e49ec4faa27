package reconcile

import (
	"fmt"

	"github.com/jarmstrongdbrx/data-entry-app/core/table"
)

// ChangeSet partitions an edit session's rows into the three merge outcomes.
// It is ephemeral: recomputed on every save, never persisted.
type ChangeSet struct {
	Inserts []table.Row
	Updates []table.Row
	Deletes []table.Row
}

// Empty reports whether the change set stages nothing.
func (c *ChangeSet) Empty() bool {
	return len(c.Inserts) == 0 && len(c.Updates) == 0 && len(c.Deletes) == 0
}

// Result counts the rows applied by a save, by outcome.
type Result struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Deleted  int `json:"deleted"`
}

// Result returns the per-outcome counts of the change set.
func (c *ChangeSet) Result() Result {
	return Result{
		Inserted: len(c.Inserts),
		Updated:  len(c.Updates),
		Deleted:  len(c.Deletes),
	}
}

// DuplicateKeyError reports two edited rows carrying the same primary key.
// Merge semantics on duplicate source keys are undefined, so the save is
// rejected before anything is staged.
type DuplicateKeyError struct {
	Table string
	Key   string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate primary key in edited rows for %s: %s", e.Table, e.Key)
}

// KeyValueError reports a row whose primary key column is null or missing.
// Key values are never null; such a row cannot be merged.
type KeyValueError struct {
	Table  string
	Column string
}

func (e *KeyValueError) Error() string {
	return fmt.Sprintf("primary key column %s is null or missing in an edited row for %s", e.Column, e.Table)
}

// SaveError reports a failed staging or merge execution. The merge statement
// is atomic at the warehouse, so a SaveError means the prior committed state
// is untouched.
type SaveError struct {
	Table string
	Err   error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save failed for table %s: %v", e.Table, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
