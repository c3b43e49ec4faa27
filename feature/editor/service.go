package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jarmstrongdbrx/data-entry-app/core/catalog"
	"github.com/jarmstrongdbrx/data-entry-app/core/reconcile"
	"github.com/jarmstrongdbrx/data-entry-app/core/storage"
	"github.com/jarmstrongdbrx/data-entry-app/core/table"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service wires the catalog inspector, snapshot reader, and reconciliation
// engine into the editing operations the handler and CLI consume.
type Service struct {
	db        *gorm.DB
	inspector *catalog.Inspector
	engine    *reconcile.Engine
	client    storage.Client // nil when archiving is disabled
	bucket    string
	logger    *zap.Logger
}

// NewService creates the editor service. client may be nil, which disables
// the snapshot archive.
func NewService(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger, schema string) *Service {
	return &Service{
		db:        db,
		inspector: catalog.NewInspector(db, schema),
		engine:    reconcile.NewEngine(db),
		client:    client,
		bucket:    bucket,
		logger:    logger,
	}
}

// ListEditable returns descriptors for every table in the schema that
// declares a primary key. Tables without one are skipped with a warning so a
// single misconfigured table never blocks the session.
func (s *Service) ListEditable(ctx context.Context) ([]*catalog.Descriptor, error) {
	names, err := s.inspector.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	descs := make([]*catalog.Descriptor, 0, len(names))
	for _, name := range names {
		desc, err := s.inspector.Describe(ctx, name)
		if err != nil {
			var npk *catalog.NoPrimaryKeyError
			if errors.As(err, &npk) {
				s.logger.Warn("Skipping table without primary key", zap.String("table", name))
				continue
			}
			return nil, err
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

// Read returns the descriptor and a fresh snapshot of one table.
func (s *Service) Read(ctx context.Context, tableName string) (*catalog.Descriptor, *Snapshot, error) {
	desc, err := s.inspector.Describe(ctx, tableName)
	if err != nil {
		return nil, nil, err
	}
	snap, err := ReadSnapshot(ctx, s.db, desc)
	if err != nil {
		return nil, nil, err
	}
	return desc, snap, nil
}

// Save reconciles the operator's working copy into the table and returns
// the per-outcome counts plus a fresh post-merge snapshot.
//
// The diff runs against a snapshot read at save time; concurrent operators
// are not coordinated and the last writer wins.
func (s *Service) Save(ctx context.Context, tableName string, working []table.Row) (reconcile.Result, *Snapshot, error) {
	desc, snap, err := s.Read(ctx, tableName)
	if err != nil {
		return reconcile.Result{}, nil, err
	}

	// Archive the pre-save state first; an unreachable archive logs a
	// warning but never blocks the save.
	if s.client != nil {
		if err := s.archiveSnapshot(ctx, desc, snap); err != nil {
			s.logger.Warn("Snapshot archive failed",
				zap.String("table", desc.Qualified), zap.Error(err))
		}
	}

	sess := NewSession(desc, snap)
	sess.Replace(working)

	res, err := s.engine.Save(ctx, desc, snap.Columns, snap.Rows, sess.EditedRows())
	if err != nil {
		return reconcile.Result{}, nil, err
	}

	s.logger.Info("Changes saved",
		zap.String("table", desc.Qualified),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("deleted", res.Deleted),
	)

	// Re-read to confirm and hand the UI its refreshed view.
	fresh, err := ReadSnapshot(ctx, s.db, desc)
	if err != nil {
		return res, nil, err
	}
	return res, fresh, nil
}

// CoerceRows converts grid rows decoded from JSON into typed rows using the
// snapshot's column kinds. The is_delete marker is accepted on any row;
// unknown columns are rejected.
func (s *Service) CoerceRows(snap *Snapshot, raw []map[string]any) ([]table.Row, error) {
	rows := make([]table.Row, 0, len(raw))
	for _, in := range raw {
		rec := make(table.Row, len(in))
		for name, cell := range in {
			var kind table.Kind
			if name == table.ColDelete {
				kind = table.KindBool
			} else {
				k, ok := snap.Kind(name)
				if !ok {
					return nil, fmt.Errorf("unknown column %q", name)
				}
				kind = k
			}
			v, err := table.Coerce(cell, kind)
			if err != nil {
				var fe *table.FormatError
				if errors.As(err, &fe) {
					fe.Column = name
				}
				return nil, err
			}
			rec[name] = v
		}
		// Columns the grid omitted are staged as nulls.
		for _, c := range snap.Columns {
			if _, ok := rec[c.Name]; !ok {
				rec[c.Name] = table.Null()
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// marshalSnapshot renders a snapshot as the archive JSON document.
func marshalSnapshot(desc *catalog.Descriptor, snap *Snapshot) ([]byte, error) {
	doc := struct {
		Table      string      `json:"table"`
		PrimaryKey []string    `json:"primary_key"`
		Columns    []string    `json:"columns"`
		Rows       []table.Row `json:"rows"`
	}{
		Table:      desc.Qualified,
		PrimaryKey: desc.PrimaryKey,
		Rows:       snap.Rows,
	}
	for _, c := range snap.Columns {
		doc.Columns = append(doc.Columns, c.Name)
	}
	return json.Marshal(doc)
}
