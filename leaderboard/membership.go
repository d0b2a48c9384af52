// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/scoreboard/models"
)

// Membership changes validate every reference before writing anything,
// all in one transaction. A request that fails leaves the suite as it
// was.

// AddTestCasesToSuite attaches existing test cases to a suite.
func (s *Store) AddTestCasesToSuite(ctx context.Context, caller Caller, suiteID int64, refs []models.Ref) (models.SuiteWithTestCases, error) {
	return s.changeSuiteTestCases(ctx, caller, suiteID, refs, true)
}

// RemoveTestCasesFromSuite detaches test cases from a suite. Existing
// scores for them are kept.
func (s *Store) RemoveTestCasesFromSuite(ctx context.Context, caller Caller, suiteID int64, refs []models.Ref) (models.SuiteWithTestCases, error) {
	return s.changeSuiteTestCases(ctx, caller, suiteID, refs, false)
}

func (s *Store) changeSuiteTestCases(ctx context.Context, caller Caller, suiteID int64, refs []models.Ref, add bool) (models.SuiteWithTestCases, error) {
	var out models.SuiteWithTestCases
	if len(refs) == 0 {
		return out, invalid("at least one test case is required")
	}

	op := "remove_suite_testcases"
	if add {
		op = "add_suite_testcases"
	}

	err := s.writeTx(ctx, op, func(tx *sql.Tx) error {
		if _, err := loadSuite(ctx, tx, suiteID); err != nil {
			return err
		}
		if err := s.authorize(ctx, tx, caller, suiteID); err != nil {
			return err
		}

		current, err := suiteTestCaseIDs(ctx, tx, suiteID)
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(refs))
		seen := make(map[int64]bool, len(refs))
		for _, ref := range refs {
			tc, err := resolveTestCase(ctx, tx, ref)
			if err != nil {
				return err
			}
			if seen[tc.ID] {
				return invalid("test case %s is listed more than once", ref)
			}
			seen[tc.ID] = true

			switch {
			case add && current[tc.ID]:
				return conflict("test case %s is already in suite %d", ref, suiteID)
			case !add && !current[tc.ID]:
				return conflict("test case %s is not in suite %d", ref, suiteID)
			}
			ids = append(ids, tc.ID)
		}

		stmt := "DELETE FROM suite_testcase WHERE suite_id = $1 AND test_case_id = $2"
		if add {
			stmt = "INSERT INTO suite_testcase (suite_id, test_case_id) VALUES ($1, $2)"
		}
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, stmt, suiteID, id); err != nil {
				if isUniqueViolation(err) {
					return conflict("test case %d is already in suite %d", id, suiteID)
				}
				return fmt.Errorf("failed to update suite test cases: %w", err)
			}
		}
		su, err := loadSuite(ctx, tx, suiteID)
		if err != nil {
			return err
		}
		out.Suite = su
		out.TestCases, err = suiteTestCases(ctx, tx, suiteID, 0, -1)
		return err
	})
	if err != nil {
		return models.SuiteWithTestCases{}, err
	}

	slog.Info("suite test cases changed", "suite_id", suiteID, "add", add, "count", len(refs), "by", caller.Username)
	return out, nil
}

func suiteTestCaseIDs(ctx context.Context, q queryer, suiteID int64) (map[int64]bool, error) {
	rows, err := q.QueryContext(ctx, "SELECT test_case_id FROM suite_testcase WHERE suite_id = $1", suiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suite test cases: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan suite test case: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// AddUsersToSuite makes users, named by username or email, owners of a
// suite.
func (s *Store) AddUsersToSuite(ctx context.Context, caller Caller, suiteID int64, refs []string) ([]models.User, error) {
	return s.changeSuiteUsers(ctx, caller, suiteID, refs, true)
}

// RemoveUsersFromSuite revokes suite ownership.
func (s *Store) RemoveUsersFromSuite(ctx context.Context, caller Caller, suiteID int64, refs []string) ([]models.User, error) {
	return s.changeSuiteUsers(ctx, caller, suiteID, refs, false)
}

func (s *Store) changeSuiteUsers(ctx context.Context, caller Caller, suiteID int64, refs []string, add bool) ([]models.User, error) {
	if len(refs) == 0 {
		return nil, invalid("at least one user is required")
	}

	op := "remove_suite_users"
	if add {
		op = "add_suite_users"
	}

	var owners []models.User
	err := s.writeTx(ctx, op, func(tx *sql.Tx) error {
		if _, err := loadSuite(ctx, tx, suiteID); err != nil {
			return err
		}
		if err := s.authorize(ctx, tx, caller, suiteID); err != nil {
			return err
		}

		current := make(map[int64]bool)
		rows, err := tx.QueryContext(ctx, "SELECT user_id FROM suite_user WHERE suite_id = $1", suiteID)
		if err != nil {
			return fmt.Errorf("failed to query suite users: %w", err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan suite user: %w", err)
			}
			current[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate suite users: %w", err)
		}

		ids := make([]int64, 0, len(refs))
		seen := make(map[int64]bool, len(refs))
		for _, ref := range refs {
			u, err := scanUser(tx.QueryRowContext(ctx,
				"SELECT "+userColumns+" FROM app_user WHERE username = $1 OR email = $1 ORDER BY id LIMIT 1", ref))
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("user %q not found", ref)
			}
			if err != nil {
				return fmt.Errorf("failed to load user: %w", err)
			}
			if seen[u.ID] {
				return invalid("user %q is listed more than once", ref)
			}
			seen[u.ID] = true

			switch {
			case add && current[u.ID]:
				return conflict("user %q already owns suite %d", ref, suiteID)
			case !add && !current[u.ID]:
				return conflict("user %q does not own suite %d", ref, suiteID)
			}
			ids = append(ids, u.ID)
		}

		stmt := "DELETE FROM suite_user WHERE suite_id = $1 AND user_id = $2"
		if add {
			stmt = "INSERT INTO suite_user (suite_id, user_id) VALUES ($1, $2)"
		}
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, stmt, suiteID, id); err != nil {
				if isUniqueViolation(err) {
					return conflict("user %d already owns suite %d", id, suiteID)
				}
				return fmt.Errorf("failed to update suite users: %w", err)
			}
		}

		rows, err = tx.QueryContext(ctx, `
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

		owners = []models.User{}
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return fmt.Errorf("failed to scan user: %w", err)
			}
			owners = append(owners, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	slog.Info("suite owners changed", "suite_id", suiteID, "add", add, "count", len(refs), "by", caller.Username)
	return owners, nil
}
