// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect Dialect) error {
	_, err := db.Exec(Schema(dialect))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Schema renders the DDL for the given dialect.
func Schema(dialect Dialect) string {
	r := strings.NewReplacer(
		"{{ID}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{FLOAT}}", "REAL",
		"{{TIMESTAMP}}", "TIMESTAMP",
	)
	if dialect == DialectPostgres {
		r = strings.NewReplacer(
			"{{ID}}", "BIGSERIAL PRIMARY KEY",
			"{{FLOAT}}", "DOUBLE PRECISION",
			"{{TIMESTAMP}}", "TIMESTAMPTZ",
		)
	}
	return r.Replace(schema)
}

const schema = `
-- Users
CREATE TABLE IF NOT EXISTS app_user (
    id {{ID}},
    username TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    admin BOOLEAN NOT NULL DEFAULT FALSE
);

-- Test cases
CREATE TABLE IF NOT EXISTS testcase (
    id {{ID}},
    name TEXT NOT NULL UNIQUE,
    run_command TEXT,
    test_data TEXT,
    weight INTEGER NOT NULL DEFAULT 1 CHECK (weight >= 1)
);

-- Suites
CREATE TABLE IF NOT EXISTS suite (
    id {{ID}},
    name TEXT NOT NULL UNIQUE,
    rank_algorithm TEXT NOT NULL DEFAULT 'avg',
    created {{TIMESTAMP}} NOT NULL,
    updated {{TIMESTAMP}} NOT NULL
);

-- Suite rubric membership
CREATE TABLE IF NOT EXISTS suite_testcase (
    suite_id BIGINT NOT NULL REFERENCES suite(id) ON DELETE CASCADE,
    test_case_id BIGINT NOT NULL REFERENCES testcase(id) ON DELETE CASCADE,
    PRIMARY KEY (suite_id, test_case_id)
);

CREATE INDEX IF NOT EXISTS idx_suite_testcase_test_case ON suite_testcase(test_case_id);

-- Suite owners
CREATE TABLE IF NOT EXISTS suite_user (
    suite_id BIGINT NOT NULL REFERENCES suite(id) ON DELETE CASCADE,
    user_id BIGINT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    PRIMARY KEY (suite_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_suite_user_user ON suite_user(user_id);

-- Sessions
CREATE TABLE IF NOT EXISTS session (
    id {{ID}},
    suite_id BIGINT NOT NULL REFERENCES suite(id) ON DELETE CASCADE,
    username TEXT NOT NULL REFERENCES app_user(username) ON DELETE CASCADE,
    name TEXT,
    date {{TIMESTAMP}} NOT NULL,
    commit_id TEXT,
    total_score {{FLOAT}}
);

CREATE INDEX IF NOT EXISTS idx_session_suite_score ON session(suite_id, total_score, id);
CREATE INDEX IF NOT EXISTS idx_session_suite_date ON session(suite_id, date, id);
CREATE INDEX IF NOT EXISTS idx_session_date ON session(date, id);

-- Scores
CREATE TABLE IF NOT EXISTS score (
    id {{ID}},
    session_id BIGINT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    test_case_id BIGINT NOT NULL REFERENCES testcase(id) ON DELETE CASCADE,
    score {{FLOAT}}
);

CREATE INDEX IF NOT EXISTS idx_score_session ON score(session_id, test_case_id);
`

// Tables lists every table, children first, for resets.
var Tables = []string{
	"score",
	"session",
	"suite_user",
	"suite_testcase",
	"suite",
	"testcase",
	"app_user",
}
