// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names the SQL engine behind a connection.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a configured database type to a Dialect.
func ParseDialect(dbType string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database type %q", dbType)
	}
}

// Open connects to the database and verifies the connection.
// SQLite connections get foreign keys, a busy timeout and a single
// writer connection; SQLite serializes writers anyway.
func Open(dialect Dialect, url string) (*sql.DB, error) {
	driver := "postgres"
	dsn := url
	if dialect == DialectSQLite {
		driver = "sqlite"
		dsn = sqliteDSN(url)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == DialectSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

func sqliteDSN(url string) string {
	params := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	if strings.Contains(url, "?") {
		return url + "&" + params
	}
	return url + "?" + params
}
