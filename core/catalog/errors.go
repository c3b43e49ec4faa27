package catalog

import "fmt"

// AccessError reports that the configured schema could not be listed.
// Listing is fatal: without the table list there is nothing to edit.
type AccessError struct {
	Schema string
	Err    error
}

func (e *AccessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot access schema %s: %v", e.Schema, e.Err)
	}
	return fmt.Sprintf("cannot access schema %s: no tables found", e.Schema)
}

func (e *AccessError) Unwrap() error { return e.Err }

// NoPrimaryKeyError reports a table without a declared primary key. Such a
// table cannot be edited; callers skip it with a warning rather than
// aborting the session.
type NoPrimaryKeyError struct {
	Table string
}

func (e *NoPrimaryKeyError) Error() string {
	return fmt.Sprintf("table %s has no primary key, editing is disabled", e.Table)
}
