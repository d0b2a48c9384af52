// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/scoreboard/db"
)

// Store owns all reads and writes of suites, test cases, sessions and
// scores. Every session total it returns is consistent with its scores.
type Store struct {
	db       *sql.DB
	dialect  db.Dialect
	guard    Guard
	observer Observer
	now      func() time.Time

	// beforeRecompute, when set, runs ahead of every recompute; tests
	// use it to inject failures.
	beforeRecompute func(sessionID int64) error
}

// Option configures a Store.
type Option func(*Store)

// WithGuard replaces the default owner-or-admin authorization policy.
func WithGuard(g Guard) Option {
	return func(s *Store) { s.guard = g }
}

// WithObserver attaches an event sink such as the metrics manager.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store on an open connection.
func New(conn *sql.DB, dialect db.Dialect, opts ...Option) *Store {
	s := &Store{
		db:       conn,
		dialect:  dialect,
		guard:    OwnerOrAdmin{},
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// timestamp returns the current time as stored: UTC at microsecond
// precision, which both engines keep exactly.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Store) withTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// readTx runs fn against a single snapshot. SQLite transactions are
// already serializable and a read-only flag is not honoured there.
func (s *Store) readTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	start := time.Now()
	defer func() { s.observer.QueryObserved(op, time.Since(start)) }()

	var opts *sql.TxOptions
	if s.dialect == db.DialectPostgres {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return s.withTx(ctx, opts, fn)
}

func (s *Store) writeTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	start := time.Now()
	defer func() { s.observer.QueryObserved(op, time.Since(start)) }()
	return s.withTx(ctx, nil, fn)
}

// placeholders renders "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("$")
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

// ParseDate accepts RFC 3339 timestamps and plain calendar dates.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC().Truncate(time.Microsecond), nil
		}
	}
	return time.Time{}, invalid("date %q is not a valid date", value)
}
