package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/jarmstrongdbrx/data-entry-app/core/table"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Descriptor identifies one editable table: its qualified name and the
// ordered primary-key columns discovered from constraint metadata. A
// descriptor is immutable once built.
type Descriptor struct {
	// Name is the bare table name.
	Name string `json:"name"`
	// Qualified is the schema-qualified name used in generated SQL.
	Qualified string `json:"qualified"`
	// PrimaryKey holds the key columns in their declared ordinal order.
	PrimaryKey []string `json:"primary_key"`
}

// Inspector discovers tables and their primary keys from warehouse
// metadata. Descriptors are cached for the process lifetime (the schema is
// assumed stable while the app runs) with singleflight protection so
// concurrent lookups of the same table introspect once.
type Inspector struct {
	db     *gorm.DB
	schema string

	mu    sync.RWMutex
	cache map[string]*Descriptor
	sf    singleflight.Group
}

// NewInspector creates an inspector bound to the given connection and schema.
func NewInspector(db *gorm.DB, schema string) *Inspector {
	return &Inspector{
		db:     db,
		schema: schema,
		cache:  make(map[string]*Descriptor),
	}
}

// ListTables returns the names of all base tables in the schema. The result
// is not cached; listing is cheap and the UI calls it once per page load.
func (i *Inspector) ListTables(ctx context.Context) ([]string, error) {
	var names []string
	var err error

	if i.db.Dialector.Name() == "sqlite" {
		err = i.db.WithContext(ctx).
			Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name").
			Scan(&names).Error
	} else {
		err = i.db.WithContext(ctx).
			Raw("SELECT table_name FROM information_schema.tables WHERE table_schema = ? AND table_type = 'BASE TABLE' ORDER BY table_name", i.schema).
			Scan(&names).Error
	}
	if err != nil {
		return nil, &AccessError{Schema: i.schema, Err: err}
	}
	if len(names) == 0 {
		return nil, &AccessError{Schema: i.schema}
	}
	return names, nil
}

// Describe returns the descriptor for one table, introspecting its primary
// key on first use. Tables without a primary key yield NoPrimaryKeyError and
// are never cached.
func (i *Inspector) Describe(ctx context.Context, tableName string) (*Descriptor, error) {
	if !table.ValidIdent(tableName) {
		return nil, fmt.Errorf("invalid table name %q", tableName)
	}

	i.mu.RLock()
	desc, ok := i.cache[tableName]
	i.mu.RUnlock()
	if ok {
		return desc, nil
	}

	result, err, _ := i.sf.Do(tableName, func() (any, error) {
		i.mu.RLock()
		desc, ok := i.cache[tableName]
		i.mu.RUnlock()
		if ok {
			return desc, nil
		}

		pk, err := i.primaryKey(ctx, tableName)
		if err != nil {
			return nil, err
		}
		if len(pk) == 0 {
			return nil, &NoPrimaryKeyError{Table: tableName}
		}

		desc = &Descriptor{
			Name:       tableName,
			Qualified:  i.qualify(tableName),
			PrimaryKey: pk,
		}

		i.mu.Lock()
		i.cache[tableName] = desc
		i.mu.Unlock()

		return desc, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Descriptor), nil
}

// Invalidate drops the cached descriptor for a table, forcing the next
// Describe to introspect again.
func (i *Inspector) Invalidate(tableName string) {
	i.mu.Lock()
	delete(i.cache, tableName)
	i.mu.Unlock()
}

// primaryKey returns the declared key columns in ordinal order.
func (i *Inspector) primaryKey(ctx context.Context, tableName string) ([]string, error) {
	if i.db.Dialector.Name() == "sqlite" {
		// SQLite reports the key position in the pk column of table_info.
		type sqliteColumn struct {
			Cid  int
			Name string
			Pk   int
		}
		var cols []sqliteColumn
		if err := i.db.WithContext(ctx).
			Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).
			Scan(&cols).Error; err != nil {
			return nil, fmt.Errorf("failed to inspect table %s: %w", tableName, err)
		}
		byPos := make(map[int]string)
		max := 0
		for _, c := range cols {
			if c.Pk > 0 {
				byPos[c.Pk] = c.Name
				if c.Pk > max {
					max = c.Pk
				}
			}
		}
		pk := make([]string, 0, len(byPos))
		for pos := 1; pos <= max; pos++ {
			if name, ok := byPos[pos]; ok {
				pk = append(pk, name)
			}
		}
		return pk, nil
	}

	var pk []string
	err := i.db.WithContext(ctx).Raw(`
		SELECT kcu.column_name
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.table_constraints tc
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.table_schema = tc.table_schema
		 AND kcu.table_name = tc.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = ?
		  AND tc.table_name = ?
		ORDER BY kcu.ordinal_position`, i.schema, tableName).
		Scan(&pk).Error
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", tableName, err)
	}
	return pk, nil
}

// qualify builds the schema-qualified name used in generated SQL. SQLite
// has a single unnamed schema, so the bare name is already qualified.
func (i *Inspector) qualify(tableName string) string {
	if i.db.Dialector.Name() == "sqlite" || i.schema == "" {
		return tableName
	}
	return i.schema + "." + tableName
}
