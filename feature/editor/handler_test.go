package editor

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jarmstrongdbrx/data-entry-app/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) *fiber.App {
	app := fiber.New()
	db := setupSQLite(t)
	seedFlags(t, db)
	svc := NewService(db, nil, "", zap.NewNop(), "")
	handler := NewHandler(svc)
	handler.RegisterRoutes(app)
	return app
}

func setupMockApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	app := fiber.New()
	db, sqlMock := setupMockDB(t)
	svc := NewService(db, nil, "", zap.NewNop(), "configurations")
	handler := NewHandler(svc)
	handler.RegisterRoutes(app)
	return app, sqlMock
}

func TestHandleListTables(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("GET", "/tables/", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "feature_flags", body[0]["name"])
	assert.Equal(t, []any{"flag_name"}, body[0]["primary_key"])
}

func TestHandleReadTable(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("GET", "/tables/feature_flags", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "feature_flags", body["table"])
	assert.Len(t, body["rows"], 2)
	assert.Contains(t, body["columns"], "flag_name")
}

func TestHandleReadTable_NoPrimaryKey(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("GET", "/tables/audit_log", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode)
}

func TestHandleSaveChanges(t *testing.T) {
	app, sqlMock := setupMockApp(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	expectDescribe(sqlMock)
	expectSnapshot(sqlMock, created) // handler read
	expectSnapshot(sqlMock, created) // pre-save read
	sqlMock.ExpectExec("CREATE TEMPORARY VIEW").WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectExec("MERGE INTO configurations.feature_flags").WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec("DROP VIEW IF EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	expectSnapshot(sqlMock, created) // post-merge refresh

	payload := map[string]any{"rows": []map[string]any{{
		"flag_name": "dark_mode",
		"enabled":   false,
		"note":      "flipped off",
	}}}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest("POST", "/tables/feature_flags/save", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out struct {
		Result struct {
			Inserted int `json:"inserted"`
			Updated  int `json:"updated"`
			Deleted  int `json:"deleted"`
		} `json:"result"`
		State map[string]any `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 1, out.Result.Updated)
	assert.Equal(t, "feature_flags", out.State["table"])
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandleSaveChanges_InvalidBody(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("POST", "/tables/feature_flags/save", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleSaveChanges_UnknownColumn(t *testing.T) {
	app := setupTestApp(t)

	body, _ := json.Marshal(map[string]any{"rows": []map[string]any{{"no_such_column": 1}}})
	req := httptest.NewRequest("POST", "/tables/feature_flags/save", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleSaveChanges_DuplicateKey(t *testing.T) {
	app := setupTestApp(t)

	// Two submitted rows with the same key never reach the warehouse.
	body, _ := json.Marshal(map[string]any{"rows": []map[string]any{
		{"flag_name": "dark_mode", "enabled": true},
		{"flag_name": "dark_mode", "enabled": false},
	}})
	req := httptest.NewRequest("POST", "/tables/feature_flags/save", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleDownloadArchive(t *testing.T) {
	app := fiber.New()
	db := setupSQLite(t)
	seedFlags(t, db)
	mockClient := new(mocks.Client)
	svc := NewService(db, mockClient, "config-archive", zap.NewNop(), "")
	NewHandler(svc).RegisterRoutes(app)

	doc := `{"table":"feature_flags","rows":[]}`
	mockClient.On("GetObject", mock.Anything, "config-archive",
		"archive/feature_flags/20240101T000000Z.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(doc)), nil)

	req := httptest.NewRequest("GET", "/tables/feature_flags/archives/20240101T000000Z.json", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(body))
}

func TestHandleListArchives_Disabled(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("GET", "/tables/feature_flags/archives", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}
