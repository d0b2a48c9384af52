// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/scoreboard/metrics"
	"github.com/danielhkuo/scoreboard/middleware"
	"github.com/danielhkuo/scoreboard/models"
	"github.com/danielhkuo/scoreboard/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	store, _ := testutil.SetupTestStore(t)
	mux := NewRouter(store, testutil.GetTestConfig(), nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	store, _ := testutil.SetupTestStore(t)
	mux := NewRouter(store, testutil.GetTestConfig(), nil)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	expected := "scoreboard API v1"
	if w.Code != http.StatusOK || w.Body.String() != expected {
		t.Errorf("Expected 200 '%s', got %d '%s'", expected, w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/nowhere", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown path, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	store, _ := testutil.SetupTestStore(t)
	mux := NewRouter(store, testutil.GetTestConfig(), nil)

	// Handlers may answer 400, 401, 403 or 404; the route only has to match.
	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/auth"},
		{"GET", "/users"},
		{"POST", "/users"},
		{"DELETE", "/users"},
		{"GET", "/suites"},
		{"POST", "/suites"},
		{"GET", "/suites/count"},
		{"GET", "/suites/1"},
		{"GET", "/suites/1/test-cases"},
		{"POST", "/suites/1/test-cases"},
		{"DELETE", "/suites/1/test-cases"},
		{"GET", "/suites/1/users"},
		{"POST", "/suites/1/users"},
		{"DELETE", "/suites/1/users"},
		{"GET", "/suites/1/sessions"},
		{"POST", "/suites/1/sessions"},
		{"GET", "/suites/1/sessions/2"},
		{"PUT", "/suites/1/sessions/2/scores/3"},
		{"DELETE", "/suites/1/sessions/2/scores/3"},
		{"GET", "/sessions/latest"},
		{"DELETE", "/sessions/2"},
		{"GET", "/test-cases"},
		{"POST", "/test-cases"},
		{"GET", "/test-cases/count"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
			if w.Header().Get(middleware.HeaderRequestID) == "" {
				t.Errorf("Route %s %s is not wrapped with request logging", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	store, _ := testutil.SetupTestStore(t)
	mux := NewRouter(store, testutil.GetTestConfig(), nil)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"PUT to suites", "PUT", "/suites", http.StatusMethodNotAllowed},
		{"POST to a score", "POST", "/suites/1/sessions/2/scores/3", http.StatusMethodNotAllowed},
		{"count is not an id", "GET", "/suites/count", http.StatusOK},
		{"latest is not an id", "GET", "/sessions/latest", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	store, _ := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()

	mux := NewRouter(store, cfg, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected /metrics to be absent without a manager, got %d", w.Code)
	}

	m := metrics.NewManager()
	mux = NewRouter(store, cfg, m)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/suites/count", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `route="GET /suites/count"`) {
		t.Errorf("Expected request metrics for the count route, got:\n%s", w.Body.String())
	}
}

// TestScoringFlow drives a session from login to rank through the mux.
func TestScoringFlow(t *testing.T) {
	store, _ := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	testutil.CreateTestUser(t, store, "alice", false)
	mux := NewRouter(store, cfg, nil)

	serve := func(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest(method, path, body, headers))
		return w
	}

	w := serve("POST", "/auth", models.LoginRequest{Username: "alice", Password: testutil.TestPassword}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var login models.LoginResponse
	testutil.AssertJSON(t, w, &login)
	headers := map[string]string{
		middleware.HeaderUsername:    login.Username,
		middleware.HeaderIdentityKey: login.IdentityKey,
	}

	w = serve("POST", "/suites", models.CreateSuiteRequest{Name: "nightly", RankAlgorithm: "sum"}, headers)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var suite models.SuiteResponse
	testutil.AssertJSON(t, w, &suite)
	suitePath := fmt.Sprintf("/suites/%d", suite.Suite.ID)

	weight := 3
	w = serve("POST", "/test-cases", models.CreateTestCaseRequest{
		Name:   "B",
		Weight: &weight,
		Suites: []models.Ref{{ID: suite.Suite.ID}},
	}, headers)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var tc models.TestCaseResponse
	testutil.AssertJSON(t, w, &tc)

	body := fmt.Sprintf(`{"scores":[{"testCaseId":%d,"score":20}]}`, tc.TestCase.ID)
	req := httptest.NewRequest("POST", suitePath+"/sessions", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.SessionResponse
	testutil.AssertJSON(t, w, &created)
	if created.Session.TotalScore == nil || *created.Session.TotalScore != 60 {
		t.Fatalf("Expected total 60, got %v", created.Session.TotalScore)
	}

	w = serve("GET", fmt.Sprintf("%s/sessions/%d", suitePath, created.Session.ID), nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var rank models.SessionRank
	testutil.AssertJSON(t, w, &rank)
	if rank.Rank != 1 || rank.TotalSessions != 1 || *rank.MaxScore != 60 {
		t.Errorf("Unexpected rank %+v", rank)
	}

	w = serve("DELETE", fmt.Sprintf("/sessions/%d", created.Session.ID), nil, nil)
	testutil.AssertStatus(t, w, http.StatusForbidden)
	w = serve("DELETE", fmt.Sprintf("/sessions/%d", created.Session.ID), nil, headers)
	testutil.AssertStatus(t, w, http.StatusOK)
}
