// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the scoreboard API.

# Handler Types

Each handler is a struct with store and config dependencies:

  - AuthHandler: Login and identity keys
  - UserHandler: Account administration
  - SuiteHandler: Suites and their test case and owner membership
  - TestCaseHandler: Test case catalog
  - SessionHandler: Sessions, scores, rankings

Handlers are created via constructor functions that accept the store and Config:

	sessionHandler := handlers.NewSessionHandler(store, cfg)

Handlers decode requests, resolve the caller and translate store errors.
All rules live in the leaderboard package.

# Caller Identity

	POST /auth → Login (returns identityKey)

Later requests send X-Username and X-Identity-Key. A bad key is
rejected with 401. Requests without the headers are anonymous and may
only read.

# Sessions

	POST /suites/{id}/sessions                  → CreateSession
	GET  /suites/{id}/sessions                  → ListSessions (orderBy, limit, continueToken)
	GET  /suites/{id}/sessions/{sessionid}      → GetSession (with rank)
	PUT  /suites/{id}/sessions/{sessionid}/scores/{testcaseid} → SetScore

Creating a session or writing a score recomputes the session total.
*/
package handlers
