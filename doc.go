// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the scoreboard API server.

Scoreboard records scored test runs ("sessions") against suites of
weighted test cases and ranks the sessions of each suite.

# Starting the Server

The server reads flags, environment variables, an optional .env file and
an optional YAML config file:

	LEADERBOARD_DATABASE_URL=file:scoreboard.db LEADERBOARD_IDENTITY_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -identity-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - IDENTITY_SALT (-identity-salt): Secret for caller identity keys

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - LOG_LEVEL (-log-level): debug, info, warn or error
  - LEADERBOARD_ADMIN_PASSWORD (-admin-password): creates the admin user on start
  - -seed: loads demo suites and sessions into an empty database

# Architecture

  - leaderboard: Suites, test cases, sessions, scores, ranking and pagination
  - scoring: Session total computation
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - metrics: Prometheus collectors
  - models: Domain records and request/response types
  - auth: Identity keys and password hashing
  - db: Connections and schema
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
