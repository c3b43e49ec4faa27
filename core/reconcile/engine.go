package reconcile

import (
	"context"
	"time"

	"github.com/jarmstrongdbrx/data-entry-app/core/catalog"
	"github.com/jarmstrongdbrx/data-entry-app/core/table"

	"gorm.io/gorm"
)

// Engine applies an edit session's changes to the warehouse using the
// stage-then-merge protocol. It holds no per-table state; the descriptor and
// column set arrive with every call because neither is known until runtime.
type Engine struct {
	db  *gorm.DB
	now func() time.Time
}

// NewEngine creates an engine bound to the shared warehouse connection.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db, now: time.Now}
}

// Save diffs edited against original, stages the change set as a transient
// view, and merges it into the target table in a single statement.
//
// Validation failures (duplicate keys, null key values, unformattable
// values) surface before any SQL is issued and are returned as their own
// error types. Execution failures are wrapped in SaveError; the merge is
// atomic at the warehouse, so a SaveError leaves the prior committed state
// untouched. The staging view is dropped on every exit path, success or not.
func (e *Engine) Save(ctx context.Context, desc *catalog.Descriptor, columns []table.Column, original, edited []table.Row) (Result, error) {
	now := e.now().UTC()

	cs, err := BuildChangeSet(desc, columns, original, edited, now)
	if err != nil {
		return Result{}, err
	}
	if cs.Empty() {
		return Result{}, nil
	}

	st, err := buildStatements(desc, columns, cs, now)
	if err != nil {
		return Result{}, err
	}

	if err := e.db.WithContext(ctx).Exec(st.create).Error; err != nil {
		return Result{}, &SaveError{Table: desc.Qualified, Err: err}
	}
	defer func() {
		// Teardown must survive a failed merge; a fresh statement on the
		// shared connection, deliberately not tied to the request context.
		_ = e.db.Exec(st.drop).Error
	}()

	if err := e.db.WithContext(ctx).Exec(st.merge).Error; err != nil {
		return Result{}, &SaveError{Table: desc.Qualified, Err: err}
	}

	return cs.Result(), nil
}
