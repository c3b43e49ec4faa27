package editor

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jarmstrongdbrx/data-entry-app/core/storage/mocks"
	"github.com/jarmstrongdbrx/data-entry-app/core/table"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, sqlMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, sqlMock
}

func expectDescribe(sqlMock sqlmock.Sqlmock) {
	sqlMock.ExpectQuery("SELECT kcu.column_name").
		WithArgs("configurations", "feature_flags").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("flag_name"))
}

func expectSnapshot(sqlMock sqlmock.Sqlmock, created time.Time) {
	rows := sqlmock.NewRows([]string{"flag_name", "enabled", "note", "CreatedAt", "UpdatedAt"}).
		AddRow("dark_mode", true, "old note", created, created)
	sqlMock.ExpectQuery(`SELECT \* FROM configurations.feature_flags`).WillReturnRows(rows)
}

func TestListEditable_SkipsTablesWithoutKey(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.Exec("CREATE TABLE feature_flags (flag_name TEXT PRIMARY KEY, enabled BOOLEAN)").Error)
	require.NoError(t, db.Exec("CREATE TABLE audit_log (message TEXT, at TIMESTAMP)").Error)

	svc := NewService(db, nil, "", zap.NewNop(), "")
	descs, err := svc.ListEditable(context.Background())
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "feature_flags", descs[0].Name)
}

func TestRead(t *testing.T) {
	db := setupSQLite(t)
	seedFlags(t, db)

	svc := NewService(db, nil, "", zap.NewNop(), "")
	desc, snap, err := svc.Read(context.Background(), "feature_flags")
	require.NoError(t, err)
	assert.Equal(t, []string{"flag_name"}, desc.PrimaryKey)
	assert.Len(t, snap.Rows, 2)
}

func TestCoerceRows(t *testing.T) {
	db := setupSQLite(t)
	seedFlags(t, db)
	svc := NewService(db, nil, "", zap.NewNop(), "")
	_, snap, err := svc.Read(context.Background(), "feature_flags")
	require.NoError(t, err)

	rows, err := svc.CoerceRows(snap, []map[string]any{{
		"flag_name": "dark_mode",
		"enabled":   true,
		"max_rps":   json.Number("9007199254740993"),
		"is_delete": false,
	}})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, table.String("dark_mode"), rows[0]["flag_name"])
	assert.Equal(t, table.Bool(true), rows[0]["enabled"])
	// UseNumber keeps the digits beyond float64 precision.
	assert.Equal(t, "9007199254740993", rows[0]["max_rps"].Num)
	assert.Equal(t, table.Bool(false), rows[0]["is_delete"])

	// Columns the grid omitted are staged as nulls.
	assert.True(t, rows[0]["CreatedAt"].IsNull())
	assert.True(t, rows[0]["UpdatedAt"].IsNull())
}

func TestCoerceRows_UnknownColumn(t *testing.T) {
	db := setupSQLite(t)
	seedFlags(t, db)
	svc := NewService(db, nil, "", zap.NewNop(), "")
	_, snap, err := svc.Read(context.Background(), "feature_flags")
	require.NoError(t, err)

	_, err = svc.CoerceRows(snap, []map[string]any{{"no_such_column": 1}})
	assert.ErrorContains(t, err, "unknown column")
}

func TestCoerceRows_BadValueNamesColumn(t *testing.T) {
	db := setupSQLite(t)
	seedFlags(t, db)
	svc := NewService(db, nil, "", zap.NewNop(), "")
	_, snap, err := svc.Read(context.Background(), "feature_flags")
	require.NoError(t, err)

	_, err = svc.CoerceRows(snap, []map[string]any{{"max_rps": "not a number"}})
	var fe *table.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "max_rps", fe.Column)
}

func TestSave_MergesAndRefreshes(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	svc := NewService(db, nil, "", zap.NewNop(), "configurations")
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	expectDescribe(sqlMock)
	expectSnapshot(sqlMock, created)

	sqlMock.ExpectExec("CREATE TEMPORARY VIEW stage_configurations_feature_flags_").
		WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectExec("MERGE INTO configurations.feature_flags AS t").
		WillReturnResult(sqlmock.NewResult(0, 2))
	sqlMock.ExpectExec("DROP VIEW IF EXISTS stage_configurations_feature_flags_").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Post-merge refresh.
	expectSnapshot(sqlMock, created)

	working := []table.Row{
		{
			"flag_name": table.String("dark_mode"),
			"enabled":   table.Bool(true),
			"note":      table.String("new note"),
			"CreatedAt": table.Time(created),
			"UpdatedAt": table.Time(created),
		},
		{
			"flag_name": table.String("beta_search"),
			"enabled":   table.Bool(true),
			"note":      table.Null(),
			"CreatedAt": table.Null(),
			"UpdatedAt": table.Null(),
		},
	}

	res, fresh, err := svc.Save(context.Background(), "feature_flags", working)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 0, res.Deleted)
	require.NotNil(t, fresh)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestSave_ArchiveFailureDoesNotBlock(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	mockClient := new(mocks.Client)
	svc := NewService(db, mockClient, "config-archive", zap.NewNop(), "configurations")
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mockClient.On("BucketExists", mock.Anything, "config-archive").Return(true, nil)
	mockClient.On("PutObject", mock.Anything, "config-archive", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, assert.AnError)

	expectDescribe(sqlMock)
	expectSnapshot(sqlMock, created)
	sqlMock.ExpectExec("CREATE TEMPORARY VIEW").WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectExec("MERGE INTO").WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec("DROP VIEW IF EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	expectSnapshot(sqlMock, created)

	working := []table.Row{{
		"flag_name": table.String("dark_mode"),
		"enabled":   table.Bool(false),
		"note":      table.String("old note"),
		"CreatedAt": table.Time(created),
		"UpdatedAt": table.Time(created),
		"is_delete": table.Bool(true),
	}}

	res, _, err := svc.Save(context.Background(), "feature_flags", working)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	mockClient.AssertCalled(t, "PutObject", mock.Anything, "config-archive",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestSave_CreatesArchiveBucketOnFirstWrite(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	mockClient := new(mocks.Client)
	svc := NewService(db, mockClient, "config-archive", zap.NewNop(), "configurations")
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Fresh deployment: the bucket does not exist yet and must be created
	// before the snapshot is written.
	mockClient.On("BucketExists", mock.Anything, "config-archive").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "config-archive", mock.Anything).Return(nil)
	mockClient.On("PutObject", mock.Anything, "config-archive", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	expectDescribe(sqlMock)
	expectSnapshot(sqlMock, created)
	sqlMock.ExpectExec("CREATE TEMPORARY VIEW").WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectExec("MERGE INTO").WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec("DROP VIEW IF EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	expectSnapshot(sqlMock, created)

	working := []table.Row{{
		"flag_name": table.String("dark_mode"),
		"enabled":   table.Bool(true),
		"note":      table.String("changed"),
		"CreatedAt": table.Time(created),
		"UpdatedAt": table.Time(created),
	}}

	_, _, err := svc.Save(context.Background(), "feature_flags", working)
	require.NoError(t, err)
	mockClient.AssertCalled(t, "MakeBucket", mock.Anything, "config-archive", mock.Anything)
	mockClient.AssertCalled(t, "PutObject", mock.Anything, "config-archive",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestFetchArchive(t *testing.T) {
	db := setupSQLite(t)
	seedFlags(t, db)
	mockClient := new(mocks.Client)
	svc := NewService(db, mockClient, "config-archive", zap.NewNop(), "")

	doc := `{"table":"feature_flags","rows":[]}`
	mockClient.On("GetObject", mock.Anything, "config-archive",
		"archive/feature_flags/20240101T000000Z.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(doc)), nil)

	obj, err := svc.FetchArchive(context.Background(), "feature_flags", "20240101T000000Z.json")
	require.NoError(t, err)
	defer obj.Close()

	data, err := io.ReadAll(obj)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(data))
}

func TestFetchArchive_RejectsPathyNames(t *testing.T) {
	db := setupSQLite(t)
	seedFlags(t, db)
	svc := NewService(db, new(mocks.Client), "config-archive", zap.NewNop(), "")

	_, err := svc.FetchArchive(context.Background(), "feature_flags", "../../secrets.json")
	assert.ErrorContains(t, err, "invalid archive name")

	_, err = svc.FetchArchive(context.Background(), "feature_flags", "")
	assert.ErrorContains(t, err, "invalid archive name")
}

func TestListArchives(t *testing.T) {
	db := setupSQLite(t)
	seedFlags(t, db)
	mockClient := new(mocks.Client)
	svc := NewService(db, mockClient, "config-archive", zap.NewNop(), "")

	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "archive/feature_flags/20240101T000000Z.json", Size: 42}
	ch <- minio.ObjectInfo{Key: "archive/feature_flags/20240201T000000Z.json", Size: 57}
	close(ch)
	mockClient.On("ListObjects", mock.Anything, "config-archive", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
		return opts.Prefix == "archive/feature_flags/"
	})).Return((<-chan minio.ObjectInfo)(ch))

	entries, err := svc.ListArchives(context.Background(), "feature_flags")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "archive/feature_flags/20240101T000000Z.json", entries[0].Key)
	assert.Equal(t, int64(57), entries[1].Size)
}

func TestListArchives_Disabled(t *testing.T) {
	db := setupSQLite(t)
	seedFlags(t, db)
	svc := NewService(db, nil, "", zap.NewNop(), "")

	_, err := svc.ListArchives(context.Background(), "feature_flags")
	assert.ErrorContains(t, err, "disabled")
}
