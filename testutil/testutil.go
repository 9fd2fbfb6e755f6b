// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/db"
	"github.com/danielhkuo/quickly-rank/models"
)

// TestServerAdminToken is the admin token set by GetTestConfig
const TestServerAdminToken = "test-server-admin-token"

// SetupTestDB creates a fresh SQLite database file under t.TempDir with the
// full schema. The connection is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(cliparse.DatabaseSQLite, "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      "file:test.db",
		DatabaseType:     cliparse.DatabaseSQLite,
		AdminKeySalt:     "test-admin-salt",
		PollSlugSalt:     "test-slug-salt",
		BaseURL:          "http://localhost:3318",
		ServerAdminToken: TestServerAdminToken,
		SessionTTL:       cliparse.DefaultSessionTTL,
		CreateLimit:      cliparse.DefaultCreateLimit,
		SessionLimit:     cliparse.DefaultSessionLimit,
	}
}

// CreateTestPoll creates a poll in the database and returns its ID, admin
// key, and share slug. status should be "draft", "open", or "closed"; the
// slug is empty for drafts.
func CreateTestPoll(t *testing.T, conn *sql.DB, cfg cliparse.Config, status, pollType string, allowUnranked bool) (pollID, adminKey, shareSlug string) {
	t.Helper()

	pollID, _ = auth.GenerateID(16)
	adminKey = auth.GenerateAdminKey(pollID, cfg.AdminKeySalt)

	// Nullable columns are passed as untyped nil
	var slug, closedAt any
	if status == models.StatusOpen || status == models.StatusClosed {
		shareSlug = auth.GenerateShareSlug(pollID, cfg.PollSlugSalt)
		slug = shareSlug
	}
	if status == models.StatusClosed {
		closedAt = time.Now().UTC()
	}

	_, err := conn.Exec(`
		INSERT INTO poll (id, title, description, creator_name, poll_type, allow_unranked, status, share_slug, closed_at, created_at)
		VALUES ($1, 'Test Poll', 'A *test* poll', 'TestUser', $2, $3, $4, $5, $6, $7)
	`, pollID, pollType, allowUnranked, status, slug, closedAt, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID, adminKey, shareSlug
}

// AddTestOption appends an option to a poll and returns the option ID
func AddTestOption(t *testing.T, conn *sql.DB, pollID, label string) string {
	t.Helper()

	optionID, _ := auth.GenerateID(12)
	if _, err := db.InsertOption(conn, optionID, pollID, label); err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// AddTestOptions appends one option per label
func AddTestOptions(t *testing.T, conn *sql.DB, pollID string, labels ...string) {
	t.Helper()
	for _, label := range labels {
		AddTestOption(t, conn, pollID, label)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
