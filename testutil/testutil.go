// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/scoreboard/auth"
	"github.com/danielhkuo/scoreboard/cliparse"
	"github.com/danielhkuo/scoreboard/db"
	"github.com/danielhkuo/scoreboard/leaderboard"
	"github.com/danielhkuo/scoreboard/middleware"
	"github.com/danielhkuo/scoreboard/models"
)

// TestPassword is the password of every fixture user.
const TestPassword = "correct horse battery staple"

// SetupTestDB creates a fresh SQLite database with the full schema in a
// temporary directory. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, "file:"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore returns a store on a fresh test database.
func SetupTestStore(t *testing.T, opts ...leaderboard.Option) (*leaderboard.Store, *sql.DB) {
	t.Helper()
	conn := SetupTestDB(t)
	return leaderboard.New(conn, db.DialectSQLite, opts...), conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	cfg := cliparse.Defaults()
	cfg.DatabaseURL = "file:test.db"
	cfg.IdentitySalt = "test-identity-salt"
	return cfg
}

// CreateTestUser registers a user and returns it as a caller.
func CreateTestUser(t *testing.T, store *leaderboard.Store, username string, admin bool) leaderboard.Caller {
	t.Helper()

	_, err := store.CreateUser(context.Background(), leaderboard.Caller{Admin: true}, leaderboard.NewUser{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: TestPassword,
		Admin:    admin,
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return leaderboard.Caller{Username: username, Admin: admin}
}

// CreateTestSuite creates a suite owned by owner.
func CreateTestSuite(t *testing.T, store *leaderboard.Store, owner leaderboard.Caller, name, algorithm string) models.Suite {
	t.Helper()

	su, err := store.CreateSuite(context.Background(), owner, name, algorithm)
	if err != nil {
		t.Fatalf("Failed to create test suite: %v", err)
	}
	return su
}

// AddTestCase creates a weighted test case attached to the given suites.
func AddTestCase(t *testing.T, store *leaderboard.Store, caller leaderboard.Caller, name string, weight int, suiteIDs ...int64) models.TestCase {
	t.Helper()

	refs := make([]models.Ref, len(suiteIDs))
	for i, id := range suiteIDs {
		refs[i] = models.Ref{ID: id}
	}
	tc, err := store.CreateTestCase(context.Background(), caller, leaderboard.NewTestCase{
		Name:   name,
		Weight: &weight,
		Suites: refs,
	})
	if err != nil {
		t.Fatalf("Failed to create test case: %v", err)
	}
	return tc.TestCase
}

// Score builds a NewScore.
func Score(testCaseID int64, value float64) leaderboard.NewScore {
	return leaderboard.NewScore{TestCaseID: testCaseID, Score: &value}
}

// CreateTestSession records a session with the given scores.
func CreateTestSession(t *testing.T, store *leaderboard.Store, caller leaderboard.Caller, suiteID int64, date string, scores ...leaderboard.NewScore) models.Session {
	t.Helper()

	if scores == nil {
		scores = []leaderboard.NewScore{}
	}
	se, err := store.CreateSession(context.Background(), caller, leaderboard.NewSession{
		SuiteID: suiteID,
		Date:    date,
		Scores:  scores,
	})
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return se
}

// IdentityHeaders returns the headers that authenticate username.
func IdentityHeaders(cfg cliparse.Config, username string) map[string]string {
	return map[string]string{
		middleware.HeaderUsername:    username,
		middleware.HeaderIdentityKey: auth.GenerateIdentityKey(username, cfg.IdentitySalt),
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
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
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
