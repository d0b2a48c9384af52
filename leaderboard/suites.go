// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/scoreboard/models"
	"github.com/danielhkuo/scoreboard/scoring"
)

const suiteColumns = "id, name, rank_algorithm, created, updated"

func scanSuite(row interface{ Scan(...any) error }) (models.Suite, error) {
	var su models.Suite
	err := row.Scan(&su.ID, &su.Name, &su.RankAlgorithm, &su.Created, &su.Updated)
	su.Created = su.Created.UTC()
	su.Updated = su.Updated.UTC()
	return su, err
}

func loadSuite(ctx context.Context, q queryer, suiteID int64) (models.Suite, error) {
	su, err := scanSuite(q.QueryRowContext(ctx,
		"SELECT "+suiteColumns+" FROM suite WHERE id = $1", suiteID))
	if errors.Is(err, sql.ErrNoRows) {
		return su, notFound("suite %d not found", suiteID)
	}
	if err != nil {
		return su, fmt.Errorf("failed to load suite: %w", err)
	}
	return su, nil
}

func suiteOwners(ctx context.Context, q queryer, suiteID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT u.username
		FROM suite_user su
		JOIN app_user u ON u.id = su.user_id
		WHERE su.suite_id = $1
		ORDER BY u.username
	`, suiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suite owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan suite owner: %w", err)
		}
		owners = append(owners, name)
	}
	return owners, rows.Err()
}

// authorize fails with Forbidden unless the guard lets caller manage
// the suite.
func (s *Store) authorize(ctx context.Context, q queryer, caller Caller, suiteID int64) error {
	if caller.Anonymous() {
		return forbidden("authentication required")
	}
	owners, err := suiteOwners(ctx, q, suiteID)
	if err != nil {
		return err
	}
	if !s.guard.CanManage(ctx, caller, SuiteAccess{SuiteID: suiteID, Owners: owners}) {
		return forbidden("you do not have permission to modify suite %d", suiteID)
	}
	return nil
}

// CreateSuite creates a suite owned by the caller. Any algorithm other
// than "sum" is stored as "avg".
func (s *Store) CreateSuite(ctx context.Context, caller Caller, name, algorithm string) (models.Suite, error) {
	if caller.Anonymous() {
		return models.Suite{}, forbidden("authentication required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Suite{}, invalid("suite name is required")
	}

	now := s.timestamp()
	su := models.Suite{
		Name:          name,
		RankAlgorithm: scoring.NormalizeAlgorithm(algorithm),
		Created:       now,
		Updated:       now,
	}

	err := s.writeTx(ctx, "create_suite", func(tx *sql.Tx) error {
		var userID int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM app_user WHERE username = $1", caller.Username).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			return forbidden("unknown user %q", caller.Username)
		}
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO suite (name, rank_algorithm, created, updated)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, su.Name, su.RankAlgorithm, su.Created, su.Updated).Scan(&su.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return conflict("a suite named %q already exists", su.Name)
			}
			return fmt.Errorf("failed to insert suite: %w", err)
		}

		_, err = tx.ExecContext(ctx, "INSERT INTO suite_user (suite_id, user_id) VALUES ($1, $2)", su.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to add suite owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Suite{}, err
	}

	slog.Info("suite created", "suite_id", su.ID, "name", su.Name, "rank_algorithm", su.RankAlgorithm, "owner", caller.Username)
	return su, nil
}

// GetSuite returns a suite with its test cases ordered by id.
func (s *Store) GetSuite(ctx context.Context, suiteID int64) (models.SuiteWithTestCases, error) {
	var out models.SuiteWithTestCases
	err := s.readTx(ctx, "get_suite", func(tx *sql.Tx) error {
		su, err := loadSuite(ctx, tx, suiteID)
		if err != nil {
			return err
		}
		out.Suite = su
		out.TestCases, err = suiteTestCases(ctx, tx, suiteID, 0, -1)
		return err
	})
	return out, err
}

// ListSuites pages through suites by id.
func (s *Store) ListSuites(ctx context.Context, limit int, token string) (Page[models.Suite], error) {
	var page Page[models.Suite]
	limit = ClampLimit(limit, DefaultPageSize, MaxPageSize)
	var after int64
	if token != "" {
		var err error
		if after, err = decodeIDToken(token); err != nil {
			return page, err
		}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+suiteColumns+" FROM suite WHERE id > $1 ORDER BY id LIMIT $2", after, limit+1)
	if err != nil {
		return page, fmt.Errorf("failed to query suites: %w", err)
	}
	defer rows.Close()

	page.Items = []models.Suite{}
	for rows.Next() {
		su, err := scanSuite(rows)
		if err != nil {
			return page, fmt.Errorf("failed to scan suite: %w", err)
		}
		page.Items = append(page.Items, su)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("failed to iterate suites: %w", err)
	}

	if len(page.Items) > limit {
		page.Items = page.Items[:limit]
		next := encodeIDToken(page.Items[limit-1].ID)
		page.ContinueToken = &next
	}
	return page, nil
}

// CountSuites returns the number of suites.
func (s *Store) CountSuites(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM suite").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count suites: %w", err)
	}
	return n, nil
}

// ListSuiteUsers returns the owners of a suite.
func (s *Store) ListSuiteUsers(ctx context.Context, suiteID int64) ([]models.User, error) {
	users := []models.User{}
	err := s.readTx(ctx, "list_suite_users", func(tx *sql.Tx) error {
		if _, err := loadSuite(ctx, tx, suiteID); err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx, `
			SELECT u.id, u.username, u.name, u.email, u.password_hash, u.admin
			FROM suite_user su
			JOIN app_user u ON u.id = su.user_id
			WHERE su.suite_id = $1
			ORDER BY u.id
		`, suiteID)
		if err != nil {
			return fmt.Errorf("failed to query suite users: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return fmt.Errorf("failed to scan user: %w", err)
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	return users, err
}

// ListSuiteTestCases pages through the test cases of a suite by id.
func (s *Store) ListSuiteTestCases(ctx context.Context, suiteID int64, limit int, token string) (Page[models.TestCase], error) {
	var page Page[models.TestCase]
	limit = ClampLimit(limit, DefaultPageSize, MaxPageSize)
	var after int64
	if token != "" {
		var err error
		if after, err = decodeIDToken(token); err != nil {
			return page, err
		}
	}

	err := s.readTx(ctx, "list_suite_testcases", func(tx *sql.Tx) error {
		if _, err := loadSuite(ctx, tx, suiteID); err != nil {
			return err
		}
		items, err := suiteTestCases(ctx, tx, suiteID, after, limit+1)
		if err != nil {
			return err
		}
		page.Items = items
		return nil
	})
	if err != nil {
		return page, err
	}

	if len(page.Items) > limit {
		page.Items = page.Items[:limit]
		next := encodeIDToken(page.Items[limit-1].ID)
		page.ContinueToken = &next
	}
	return page, nil
}

// suiteTestCases lists a suite's test cases with id > after. A negative
// limit returns all of them.
func suiteTestCases(ctx context.Context, q queryer, suiteID, after int64, limit int) ([]models.TestCase, error) {
	query := `
		SELECT t.id, t.name, t.run_command, t.test_data, t.weight
		FROM suite_testcase st
		JOIN testcase t ON t.id = st.test_case_id
		WHERE st.suite_id = $1 AND t.id > $2
		ORDER BY t.id`
	args := []any{suiteID, after}
	if limit >= 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query suite test cases: %w", err)
	}
	defer rows.Close()

	cases := []models.TestCase{}
	for rows.Next() {
		tc, err := scanTestCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test case: %w", err)
		}
		cases = append(cases, tc)
	}
	return cases, rows.Err()
}

// touchSuite moves suite.updated forward to now, never backwards.
func touchSuite(ctx context.Context, q queryer, suiteID int64, now time.Time) error {
	_, err := q.ExecContext(ctx,
		"UPDATE suite SET updated = $1 WHERE id = $2 AND updated < $1", now, suiteID)
	if err != nil {
		return fmt.Errorf("failed to update suite timestamp: %w", err)
	}
	return nil
}
