// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Two engines are supported, picked by DATABASE_TYPE:

	conn, err := db.Open(db.DialectPostgres, "postgres://...")
	conn, err := db.Open(db.DialectSQLite, "file:scoreboard.db")

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, dialect); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - app_user: Accounts; username and email are unique
  - testcase: Weighted test cases (weight >= 1)
  - suite: Named rubric plus rank algorithm (avg | sum)
  - suite_testcase: Which test cases a suite scores
  - suite_user: Suite owners
  - session: One scored run; total_score is a cached aggregate
  - score: One test case result within a session

# Relationships

	suite *──* testcase (via suite_testcase)
	suite *──* app_user (via suite_user)
	suite 1──* session
	session 1──* score
	testcase 1──* score

All foreign keys use ON DELETE CASCADE.

# Indexes

Keyset pagination reads sessions through (suite_id, total_score, id) and
(suite_id, date, id); the rank count uses the first one as well.
*/
package db
