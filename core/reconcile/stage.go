package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jarmstrongdbrx/data-entry-app/core/catalog"
	"github.com/jarmstrongdbrx/data-entry-app/core/table"
)

// statements holds the three SQL texts of one save operation. The staging
// relation lives exactly as long as the save; drop runs on every exit path.
type statements struct {
	view   string
	create string
	merge  string
	drop   string
}

// buildStatements renders the change set into staging and merge SQL.
//
// The staging relation is a temporary view over a VALUES list carrying every
// target column plus the is_delete marker. The merge is a single statement
// keyed on the table's primary key: matched+flagged rows are deleted,
// matched rows are overwritten, unmatched rows are inserted. Atomicity is
// the warehouse's job; ours is producing well-formed literals.
func buildStatements(desc *catalog.Descriptor, columns []table.Column, cs *ChangeSet, now time.Time) (*statements, error) {
	if err := validateIdents(desc, columns); err != nil {
		return nil, err
	}

	isKey := make(map[string]bool, len(desc.PrimaryKey))
	for _, col := range desc.PrimaryKey {
		isKey[col] = true
	}

	view := fmt.Sprintf("stage_%s_%d", strings.ReplaceAll(desc.Qualified, ".", "_"), now.Unix())

	var values []string
	appendRows := func(rows []table.Row, deleted bool) error {
		for _, row := range rows {
			parts := make([]string, 0, len(columns)+1)
			for _, c := range columns {
				lit, err := table.Literal(row[c.Name])
				if err != nil {
					var fe *table.FormatError
					if errors.As(err, &fe) {
						fe.Column = c.Name
					}
					return err
				}
				parts = append(parts, lit)
			}
			if deleted {
				parts = append(parts, "TRUE")
			} else {
				parts = append(parts, "FALSE")
			}
			values = append(values, "("+strings.Join(parts, ", ")+")")
		}
		return nil
	}
	if err := appendRows(cs.Inserts, false); err != nil {
		return nil, err
	}
	if err := appendRows(cs.Updates, false); err != nil {
		return nil, err
	}
	if err := appendRows(cs.Deletes, true); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		names = append(names, c.Name)
	}
	names = append(names, table.ColDelete)

	create := fmt.Sprintf(
		"CREATE TEMPORARY VIEW %s AS SELECT * FROM (VALUES %s) AS t (%s)",
		view, strings.Join(values, ", "), strings.Join(names, ", "),
	)

	onParts := make([]string, 0, len(desc.PrimaryKey))
	for _, col := range desc.PrimaryKey {
		onParts = append(onParts, fmt.Sprintf("t.%s = s.%s", col, col))
	}

	// Every non-key column except CreatedAt is overwritten on update;
	// CreatedAt is written once at insert and never touched again.
	var setParts []string
	for _, c := range columns {
		if isKey[c.Name] || c.Name == table.ColCreatedAt {
			continue
		}
		setParts = append(setParts, fmt.Sprintf("t.%s = s.%s", c.Name, c.Name))
	}

	insertCols := make([]string, 0, len(columns))
	insertVals := make([]string, 0, len(columns))
	for _, c := range columns {
		insertCols = append(insertCols, c.Name)
		insertVals = append(insertVals, "s."+c.Name)
	}

	// A table whose every column is part of the key has nothing to update;
	// the matched-update arm is omitted so the merge stays well-formed.
	updateArm := ""
	if len(setParts) > 0 {
		updateArm = fmt.Sprintf("WHEN MATCHED AND s.%s = FALSE THEN UPDATE SET %s ",
			table.ColDelete, strings.Join(setParts, ", "))
	}

	merge := fmt.Sprintf(
		"MERGE INTO %s AS t USING %s AS s ON %s "+
			"WHEN MATCHED AND s.%s = TRUE THEN DELETE "+
			"%s"+
			"WHEN NOT MATCHED AND s.%s = FALSE THEN INSERT (%s) VALUES (%s)",
		desc.Qualified, view, strings.Join(onParts, " AND "),
		table.ColDelete,
		updateArm,
		table.ColDelete, strings.Join(insertCols, ", "), strings.Join(insertVals, ", "),
	)

	return &statements{
		view:   view,
		create: create,
		merge:  merge,
		drop:   "DROP VIEW IF EXISTS " + view,
	}, nil
}

// validateIdents rejects any table or column name that cannot be safely
// interpolated into the generated statements.
func validateIdents(desc *catalog.Descriptor, columns []table.Column) error {
	for _, part := range strings.Split(desc.Qualified, ".") {
		if !table.ValidIdent(part) {
			return fmt.Errorf("invalid table name %q", desc.Qualified)
		}
	}
	for _, col := range desc.PrimaryKey {
		if !table.ValidIdent(col) {
			return fmt.Errorf("invalid key column %q in table %s", col, desc.Qualified)
		}
	}
	for _, c := range columns {
		if !table.ValidIdent(c.Name) {
			return fmt.Errorf("invalid column %q in table %s", c.Name, desc.Qualified)
		}
	}
	return nil
}
