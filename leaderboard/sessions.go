// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/scoreboard/models"
	"github.com/danielhkuo/scoreboard/scoring"
)

// NewSession is the input to CreateSession. Scores must be non-nil; an
// empty Date means now.
type NewSession struct {
	SuiteID  int64
	Date     string
	CommitID string
	Name     string
	Scores   []NewScore
}

// NewScore is one submitted result. A nil Score is a non-numeric value.
type NewScore struct {
	TestCaseID int64
	Score      *float64
}

const sessionSelect = `
	SELECT se.id, se.suite_id, se.username, se.name, se.date, se.commit_id, se.total_score,
	       su.name, su.rank_algorithm
	FROM session se
	JOIN suite su ON su.id = se.suite_id`

func scanSession(row interface{ Scan(...any) error }) (models.Session, error) {
	var se models.Session
	var name, commit sql.NullString
	var total sql.NullFloat64
	err := row.Scan(&se.ID, &se.SuiteID, &se.Username, &name, &se.Date, &commit, &total,
		&se.SuiteName, &se.RankAlgorithm)
	if err != nil {
		return se, err
	}
	se.Date = se.Date.UTC()
	se.Name = stringPtr(name)
	se.CommitID = stringPtr(commit)
	se.TotalScore = floatPtr(total)
	if se.TotalScore != nil {
		display := scoring.Round2(*se.TotalScore)
		se.DisplayScore = &display
	}
	se.Scores = []models.Score{}
	return se, nil
}

func querySessions(ctx context.Context, q queryer, query string, args ...any) ([]models.Session, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		se, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// loadScores fills in the flattened score list of each session.
func loadScores(ctx context.Context, q queryer, sessions []models.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	ids := make([]int64, len(sessions))
	index := make(map[int64]int, len(sessions))
	for i, se := range sessions {
		ids[i] = se.ID
		index[se.ID] = i
	}

	rows, err := q.QueryContext(ctx, `
		SELECT sc.id, sc.session_id, sc.test_case_id, sc.score, t.name, t.weight
		FROM score sc
		JOIN testcase t ON t.id = sc.test_case_id
		WHERE sc.session_id IN (`+placeholders(1, len(ids))+`)
		ORDER BY sc.session_id, sc.id
	`, int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc models.Score
		var value sql.NullFloat64
		if err := rows.Scan(&sc.ID, &sc.SessionID, &sc.TestCaseID, &value, &sc.TestCaseName, &sc.TestCaseWeight); err != nil {
			return fmt.Errorf("failed to scan score: %w", err)
		}
		sc.Score = floatPtr(value)
		i := index[sc.SessionID]
		sessions[i].Scores = append(sessions[i].Scores, sc)
	}
	return rows.Err()
}

func getSession(ctx context.Context, q queryer, sessionID int64) (models.Session, error) {
	sessions, err := querySessions(ctx, q, sessionSelect+" WHERE se.id = $1", sessionID)
	if err != nil {
		return models.Session{}, err
	}
	if len(sessions) == 0 {
		return models.Session{}, notFound("session %d not found", sessionID)
	}
	if err := loadScores(ctx, q, sessions); err != nil {
		return models.Session{}, err
	}
	return sessions[0], nil
}

// GetSession loads a session with its scores.
func (s *Store) GetSession(ctx context.Context, sessionID int64) (models.Session, error) {
	var se models.Session
	err := s.readTx(ctx, "get_session", func(tx *sql.Tx) error {
		var err error
		se, err = getSession(ctx, tx, sessionID)
		return err
	})
	return se, err
}

// CreateSession records a scored run for a suite. Every score must name
// a test case of the suite, at most once, with a numeric value. Nothing
// is written unless all of them do. The total is computed in the same
// transaction and the suite's updated time moves forward.
func (s *Store) CreateSession(ctx context.Context, caller Caller, in NewSession) (models.Session, error) {
	var sessionID int64
	err := s.writeTx(ctx, "create_session", func(tx *sql.Tx) error {
		if _, err := loadSuite(ctx, tx, in.SuiteID); err != nil {
			return err
		}
		if err := s.authorize(ctx, tx, caller, in.SuiteID); err != nil {
			return err
		}
		if in.Scores == nil {
			return invalid("scores array is required")
		}

		members, err := suiteTestCaseIDs(ctx, tx, in.SuiteID)
		if err != nil {
			return err
		}
		seen := make(map[int64]bool, len(in.Scores))
		for _, sc := range in.Scores {
			if !members[sc.TestCaseID] {
				return invalid("test case %d is not part of suite %d", sc.TestCaseID, in.SuiteID)
			}
			if seen[sc.TestCaseID] {
				return invalid("test case %d is scored more than once", sc.TestCaseID)
			}
			seen[sc.TestCaseID] = true
			if sc.Score == nil {
				return invalid("score for test case %d is not a number", sc.TestCaseID)
			}
		}

		now := s.timestamp()
		date := now
		if strings.TrimSpace(in.Date) != "" {
			if date, err = ParseDate(in.Date); err != nil {
				return err
			}
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO session (suite_id, username, name, date, commit_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, in.SuiteID, caller.Username, nullString(in.Name), date, nullString(in.CommitID)).Scan(&sessionID)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}

		for _, sc := range in.Scores {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO score (session_id, test_case_id, score) VALUES ($1, $2, $3)",
				sessionID, sc.TestCaseID, *sc.Score)
			if err != nil {
				return fmt.Errorf("failed to insert score: %w", err)
			}
		}

		s.recomputeInTx(ctx, tx, sessionID)
		return touchSuite(ctx, tx, in.SuiteID, now)
	})
	if err != nil {
		return models.Session{}, err
	}

	slog.Info("session created", "session_id", sessionID, "suite_id", in.SuiteID, "scores", len(in.Scores), "by", caller.Username)
	s.observer.SessionCreated(in.SuiteID)
	return s.GetSession(ctx, sessionID)
}

// DeleteSession removes a session and its scores.
func (s *Store) DeleteSession(ctx context.Context, caller Caller, sessionID int64) error {
	var suiteID int64
	err := s.writeTx(ctx, "delete_session", func(tx *sql.Tx) error {
		var err error
		suiteID, err = sessionSuite(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, tx, caller, suiteID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM score WHERE session_id = $1", sessionID); err != nil {
			return fmt.Errorf("failed to delete scores: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM session WHERE id = $1", sessionID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("session deleted", "session_id", sessionID, "suite_id", suiteID, "by", caller.Username)
	s.observer.SessionDeleted(suiteID)
	return nil
}

// ListSessions pages through a suite's sessions, best first or newest
// first. Ties on the ordered column are broken by descending id so pages
// neither skip nor repeat rows while sessions are being added.
func (s *Store) ListSessions(ctx context.Context, suiteID int64, orderBy string, limit int, token string) (Page[models.Session], error) {
	var page Page[models.Session]
	orderBy = NormalizeOrderBy(orderBy)
	limit = ClampLimit(limit, DefaultPageSize, MaxPageSize)

	var cursor *sessionCursor
	if token != "" {
		c, err := decodeSessionToken(orderBy, token)
		if err != nil {
			return page, err
		}
		cursor = &c
	}

	query, args := sessionPageQuery(suiteID, orderBy, cursor, limit+1)
	err := s.readTx(ctx, "list_sessions", func(tx *sql.Tx) error {
		if _, err := loadSuite(ctx, tx, suiteID); err != nil {
			return err
		}
		sessions, err := querySessions(ctx, tx, query, args...)
		if err != nil {
			return err
		}
		if len(sessions) > limit {
			sessions = sessions[:limit]
			next := encodeSessionToken(orderBy, sessions[limit-1])
			page.ContinueToken = &next
		}
		page.Items = sessions
		return loadScores(ctx, tx, page.Items)
	})
	if err != nil {
		return Page[models.Session]{}, err
	}
	return page, nil
}

// sessionPageQuery builds the keyset query for one page.
func sessionPageQuery(suiteID int64, orderBy string, cursor *sessionCursor, n int) (string, []any) {
	var b strings.Builder
	b.WriteString(sessionSelect)
	b.WriteString(" WHERE se.suite_id = $1")
	args := []any{suiteID}

	if orderBy == models.OrderByDate {
		if cursor != nil {
			b.WriteString(" AND (se.date < $2 OR (se.date = $2 AND se.id < $3))")
			args = append(args, cursor.date, cursor.id)
		}
		b.WriteString(" ORDER BY se.date DESC, se.id DESC")
	} else {
		switch {
		case cursor != nil && cursor.null:
			b.WriteString(" AND se.total_score IS NULL AND se.id < $2")
			args = append(args, cursor.id)
		case cursor != nil:
			b.WriteString(" AND (se.total_score < $2 OR (se.total_score = $2 AND se.id < $3) OR se.total_score IS NULL)")
			args = append(args, cursor.score, cursor.id)
		}
		b.WriteString(" ORDER BY se.total_score DESC NULLS LAST, se.id DESC")
	}

	args = append(args, n)
	fmt.Fprintf(&b, " LIMIT $%d", len(args))
	return b.String(), args
}

// LatestSessions returns the newest sessions across all suites.
func (s *Store) LatestSessions(ctx context.Context, limit int) ([]models.Session, error) {
	limit = ClampLimit(limit, DefaultLatestSize, MaxPageSize)
	var sessions []models.Session
	err := s.readTx(ctx, "latest_sessions", func(tx *sql.Tx) error {
		var err error
		sessions, err = querySessions(ctx, tx, sessionSelect+" ORDER BY se.date DESC, se.id DESC LIMIT $1", limit)
		if err != nil {
			return err
		}
		return loadScores(ctx, tx, sessions)
	})
	return sessions, err
}

// sessionInSuite loads a session, failing with NotFound unless it
// belongs to the suite.
func sessionInSuite(ctx context.Context, q queryer, suiteID, sessionID int64) (models.Session, error) {
	se, err := getSession(ctx, q, sessionID)
	if err != nil {
		return se, err
	}
	if se.SuiteID != suiteID {
		return models.Session{}, notFound("session %d not found in suite %d", sessionID, suiteID)
	}
	return se, nil
}
