// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package leaderboard stores suites, test cases, sessions and scores and
ranks sessions within a suite.

# Store

All reads and writes go through a Store:

	store := leaderboard.New(conn, db.DialectPostgres,
		leaderboard.WithObserver(metricsManager))

Mutations take a Caller. Suite-scoped writes (sessions, scores, suite
membership) pass through a Guard; the default allows administrators and
suite owners.

# Total Scores

session.total_score is a cached aggregate of the session's scores,
computed by the scoring package with the suite's rank algorithm. Every
score write recomputes it in the same transaction. If the recompute
fails it is rolled back to a savepoint and logged, the score write still
commits, and the total stays stale until the next recompute.

# Pagination

Listings are keyset paginated. Session pages order by
(total_score DESC NULLS LAST, id DESC) or (date DESC, id DESC); the
continue token holds the last row's value and id. Suites, test cases and
users page by ascending id. A malformed token is an InvalidInput error.

# Errors

Failures are *Error values with a Kind; use errors.Is with ErrNotFound,
ErrForbidden, ErrInvalidInput and ErrConflict, or KindOf. A failed
operation writes nothing.
*/
package leaderboard
