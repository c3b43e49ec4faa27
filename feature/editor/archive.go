package editor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jarmstrongdbrx/data-entry-app/core/catalog"

	"github.com/minio/minio-go/v7"
)

// ArchiveEntry describes one archived pre-save snapshot.
type ArchiveEntry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ensureBucket checks the archive bucket before a write and creates it when
// missing, so the first save on a fresh deployment still leaves a trail.
func (s *Service) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check archive bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create archive bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// archiveSnapshot writes the pre-save state of a table to object storage
// under archive/<table>/<timestamp>.json, giving every save an audit trail.
func (s *Service) archiveSnapshot(ctx context.Context, desc *catalog.Descriptor, snap *Snapshot) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	doc, err := marshalSnapshot(desc, snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot of %s: %w", desc.Qualified, err)
	}

	key := fmt.Sprintf("archive/%s/%s.json", desc.Name, time.Now().UTC().Format("20060102T150405Z"))
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(doc), int64(len(doc)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to archive snapshot of %s: %w", desc.Qualified, err)
	}
	return nil
}

// ListArchives returns the archived snapshots of one table, oldest first.
func (s *Service) ListArchives(ctx context.Context, tableName string) ([]ArchiveEntry, error) {
	if s.client == nil {
		return nil, fmt.Errorf("snapshot archive is disabled")
	}

	desc, err := s.inspector.Describe(ctx, tableName)
	if err != nil {
		return nil, err
	}

	entries := []ArchiveEntry{}
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    "archive/" + desc.Name + "/",
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list archives of %s: %w", desc.Qualified, obj.Err)
		}
		entries = append(entries, ArchiveEntry{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return entries, nil
}

// FetchArchive streams one archived snapshot document of a table. name is
// the bare object name within the table's archive prefix, as reported by
// ListArchives.
func (s *Service) FetchArchive(ctx context.Context, tableName, name string) (io.ReadCloser, error) {
	if s.client == nil {
		return nil, fmt.Errorf("snapshot archive is disabled")
	}
	if name == "" || strings.ContainsAny(name, "/\\") {
		return nil, fmt.Errorf("invalid archive name %q", name)
	}

	desc, err := s.inspector.Describe(ctx, tableName)
	if err != nil {
		return nil, err
	}

	key := "archive/" + desc.Name + "/" + name
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archive %s: %w", key, err)
	}
	return obj, nil
}
