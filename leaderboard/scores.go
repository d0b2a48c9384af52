// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/scoreboard/db"
	"github.com/danielhkuo/scoreboard/models"
	"github.com/danielhkuo/scoreboard/scoring"
)

const recomputeSavepoint = "recompute_total"

// recompute sets session.total_score from the session's current scores.
// Sessions whose suite cannot be found are skipped.
func (s *Store) recompute(ctx context.Context, q queryer, sessionID int64) (string, error) {
	if s.beforeRecompute != nil {
		if err := s.beforeRecompute(sessionID); err != nil {
			return RecomputeFailed, err
		}
	}

	var algorithm string
	err := q.QueryRowContext(ctx, `
		SELECT su.rank_algorithm
		FROM session se
		JOIN suite su ON su.id = se.suite_id
		WHERE se.id = $1
	`, sessionID).Scan(&algorithm)
	if errors.Is(err, sql.ErrNoRows) {
		return RecomputeSkipped, nil
	}
	if err != nil {
		return RecomputeFailed, fmt.Errorf("failed to load rank algorithm: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT sc.score, t.weight
		FROM score sc
		JOIN testcase t ON t.id = sc.test_case_id
		WHERE sc.session_id = $1
	`, sessionID)
	if err != nil {
		return RecomputeFailed, fmt.Errorf("failed to query scores: %w", err)
	}
	var inputs []scoring.Input
	for rows.Next() {
		var value sql.NullFloat64
		var in scoring.Input
		if err := rows.Scan(&value, &in.Weight); err != nil {
			rows.Close()
			return RecomputeFailed, fmt.Errorf("failed to scan score: %w", err)
		}
		in.Value = floatPtr(value)
		inputs = append(inputs, in)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return RecomputeFailed, fmt.Errorf("failed to iterate scores: %w", err)
	}

	total, ok := scoring.ComputeTotalScore(algorithm, inputs)
	_, err = q.ExecContext(ctx, "UPDATE session SET total_score = $1 WHERE id = $2",
		sql.NullFloat64{Float64: total, Valid: ok}, sessionID)
	if err != nil {
		return RecomputeFailed, fmt.Errorf("failed to update total score: %w", err)
	}
	return RecomputeOK, nil
}

// recomputeInTx runs recompute inside tx under a savepoint. A failure
// rolls back to the savepoint and is logged; the caller's write stands
// and the total stays stale until the next recompute.
func (s *Store) recomputeInTx(ctx context.Context, tx *sql.Tx, sessionID int64) {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+recomputeSavepoint); err != nil {
		slog.Error("failed to recompute total score", "session_id", sessionID, "error", err)
		s.observer.Recomputed(RecomputeFailed)
		return
	}

	outcome, err := s.recompute(ctx, tx, sessionID)
	if err != nil {
		slog.Error("failed to recompute total score", "session_id", sessionID, "error", err)
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+recomputeSavepoint); rbErr != nil {
			slog.Error("failed to roll back recompute", "session_id", sessionID, "error", rbErr)
		}
		s.observer.Recomputed(RecomputeFailed)
		return
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+recomputeSavepoint); err != nil {
		slog.Warn("failed to release recompute savepoint", "session_id", sessionID, "error", err)
	}
	if outcome == RecomputeSkipped {
		slog.Debug("recompute skipped, session has no suite", "session_id", sessionID)
	}
	s.observer.Recomputed(outcome)
}

// Recompute recalculates one session's total in its own transaction.
// It is idempotent. Unlike the trigger run by score writes, failures are
// returned.
func (s *Store) Recompute(ctx context.Context, sessionID int64) error {
	var outcome string
	err := s.writeTx(ctx, "recompute", func(tx *sql.Tx) error {
		var err error
		outcome, err = s.recompute(ctx, tx, sessionID)
		return err
	})
	if err != nil {
		s.observer.Recomputed(RecomputeFailed)
		return err
	}
	s.observer.Recomputed(outcome)
	return nil
}

// sessionSuite returns the suite id of a session.
func sessionSuite(ctx context.Context, q queryer, sessionID int64) (int64, error) {
	return scanSessionSuite(ctx, q, "SELECT suite_id FROM session WHERE id = $1", sessionID)
}

// lockSession is sessionSuite for score writers: on Postgres it holds the
// session row until commit so writes to one session recompute in turn.
// SQLite runs one writer at a time already.
func (s *Store) lockSession(ctx context.Context, tx *sql.Tx, sessionID int64) (int64, error) {
	return scanSessionSuite(ctx, tx, sessionLockQuery(s.dialect), sessionID)
}

func sessionLockQuery(dialect db.Dialect) string {
	if dialect == db.DialectPostgres {
		return "SELECT suite_id FROM session WHERE id = $1 FOR UPDATE"
	}
	return "SELECT suite_id FROM session WHERE id = $1"
}

func scanSessionSuite(ctx context.Context, q queryer, query string, sessionID int64) (int64, error) {
	var suiteID int64
	err := q.QueryRowContext(ctx, query, sessionID).Scan(&suiteID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFound("session %d not found", sessionID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load session: %w", err)
	}
	return suiteID, nil
}

// SetScore writes one test case score of a session, replacing an
// existing one. A nil value stores a null score.
func (s *Store) SetScore(ctx context.Context, caller Caller, sessionID, testCaseID int64, value *float64) (models.Session, error) {
	err := s.writeTx(ctx, "set_score", func(tx *sql.Tx) error {
		suiteID, err := s.lockSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, tx, caller, suiteID); err != nil {
			return err
		}

		members, err := suiteTestCaseIDs(ctx, tx, suiteID)
		if err != nil {
			return err
		}
		if !members[testCaseID] {
			return invalid("test case %d is not part of suite %d", testCaseID, suiteID)
		}

		score := sql.NullFloat64{}
		if value != nil {
			score = sql.NullFloat64{Float64: *value, Valid: true}
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE score SET score = $1 WHERE session_id = $2 AND test_case_id = $3",
			score, sessionID, testCaseID)
		if err != nil {
			return fmt.Errorf("failed to update score: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update score: %w", err)
		}
		if n == 0 {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO score (session_id, test_case_id, score) VALUES ($1, $2, $3)",
				sessionID, testCaseID, score)
			if err != nil {
				return fmt.Errorf("failed to insert score: %w", err)
			}
		}

		s.recomputeInTx(ctx, tx, sessionID)
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}

	s.observer.ScoreWritten("set")
	return s.GetSession(ctx, sessionID)
}

// DeleteScore removes the score a session holds for a test case.
func (s *Store) DeleteScore(ctx context.Context, caller Caller, sessionID, testCaseID int64) (models.Session, error) {
	err := s.writeTx(ctx, "delete_score", func(tx *sql.Tx) error {
		suiteID, err := s.lockSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, tx, caller, suiteID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			"DELETE FROM score WHERE session_id = $1 AND test_case_id = $2", sessionID, testCaseID)
		if err != nil {
			return fmt.Errorf("failed to delete score: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete score: %w", err)
		}
		if n == 0 {
			return notFound("session %d has no score for test case %d", sessionID, testCaseID)
		}

		s.recomputeInTx(ctx, tx, sessionID)
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}

	s.observer.ScoreWritten("delete")
	return s.GetSession(ctx, sessionID)
}
