// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the scoreboard API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, cfg, metricsManager)

The metrics manager may be nil. API routes are wrapped with request
logging and, when a manager is given, per-route request metrics.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Identity:

	POST /auth - Exchange a password for an identity key

Users (admin, requires X-Username and X-Identity-Key):

	GET    /users - List users
	POST   /users - Create user
	DELETE /users - Delete user

Suites:

	GET    /suites                 - List suites
	POST   /suites                 - Create suite
	GET    /suites/count           - Count suites
	GET    /suites/{id}            - Suite with test cases
	GET    /suites/{id}/test-cases - List suite test cases
	POST   /suites/{id}/test-cases - Attach test cases
	DELETE /suites/{id}/test-cases - Detach test cases
	GET    /suites/{id}/users      - List owners
	POST   /suites/{id}/users      - Add owners
	DELETE /suites/{id}/users      - Remove owners

Sessions and scores:

	GET    /suites/{id}/sessions                                  - Ranked or dated session pages
	POST   /suites/{id}/sessions                                  - Record a session
	GET    /suites/{id}/sessions/{sessionid}                      - Session with rank
	PUT    /suites/{id}/sessions/{sessionid}/scores/{testcaseid} - Set a score
	DELETE /suites/{id}/sessions/{sessionid}/scores/{testcaseid} - Remove a score
	GET    /sessions/latest                                       - Newest sessions across suites
	DELETE /sessions/{id}                                         - Delete session

Test cases:

	GET  /test-cases       - List test cases
	POST /test-cases       - Create test case
	GET  /test-cases/count - Count test cases
*/
package router
