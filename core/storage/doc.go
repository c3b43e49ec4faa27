// Package storage provides the object storage client backing the snapshot
// archive.
//
// It wraps the MinIO Go client behind a small interface so the archive can
// be mocked in tests (see core/storage/mocks). Both AWS S3 and self-hosted
// MinIO work. Archiving is optional; when disabled the rest of the editor
// never touches this package.
package storage
