// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/scoreboard/cliparse"
	"github.com/danielhkuo/scoreboard/handlers"
	"github.com/danielhkuo/scoreboard/leaderboard"
	"github.com/danielhkuo/scoreboard/metrics"
	"github.com/danielhkuo/scoreboard/middleware"
)

// NewRouter builds the route table. m may be nil, in which case no
// request metrics are recorded and /metrics is not served.
func NewRouter(store *leaderboard.Store, cfg cliparse.Config, m *metrics.Manager) *http.ServeMux {
	mux := http.NewServeMux()

	var rec middleware.HTTPRecorder
	if m != nil {
		rec = m
	}
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(rec, pattern, h)))
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(store, cfg)
	userHandler := handlers.NewUserHandler(store, cfg)
	suiteHandler := handlers.NewSuiteHandler(store, cfg)
	testCaseHandler := handlers.NewTestCaseHandler(store, cfg)
	sessionHandler := handlers.NewSessionHandler(store, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	// Identity
	handle("POST /auth", authHandler.Login)

	// Users (admin operations)
	handle("GET /users", userHandler.ListUsers)
	handle("POST /users", userHandler.CreateUser)
	handle("DELETE /users", userHandler.DeleteUser)

	// Suites
	handle("GET /suites", suiteHandler.ListSuites)
	handle("POST /suites", suiteHandler.CreateSuite)
	handle("GET /suites/count", suiteHandler.CountSuites)
	handle("GET /suites/{id}", suiteHandler.GetSuite)
	handle("GET /suites/{id}/test-cases", suiteHandler.ListTestCases)
	handle("POST /suites/{id}/test-cases", suiteHandler.AddTestCases)
	handle("DELETE /suites/{id}/test-cases", suiteHandler.RemoveTestCases)
	handle("GET /suites/{id}/users", suiteHandler.ListUsers)
	handle("POST /suites/{id}/users", suiteHandler.AddUsers)
	handle("DELETE /suites/{id}/users", suiteHandler.RemoveUsers)

	// Sessions and scores
	handle("GET /suites/{id}/sessions", sessionHandler.ListSessions)
	handle("POST /suites/{id}/sessions", sessionHandler.CreateSession)
	handle("GET /suites/{id}/sessions/{sessionid}", sessionHandler.GetSession)
	handle("PUT /suites/{id}/sessions/{sessionid}/scores/{testcaseid}", sessionHandler.SetScore)
	handle("DELETE /suites/{id}/sessions/{sessionid}/scores/{testcaseid}", sessionHandler.DeleteScore)
	handle("GET /sessions/latest", sessionHandler.LatestSessions)
	handle("DELETE /sessions/{id}", sessionHandler.DeleteSession)

	// Test cases
	handle("GET /test-cases", testCaseHandler.ListTestCases)
	handle("POST /test-cases", testCaseHandler.CreateTestCase)
	handle("GET /test-cases/count", testCaseHandler.CountTestCases)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("scoreboard API v1"))
	})

	return mux
}
