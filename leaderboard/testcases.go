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

	"github.com/danielhkuo/scoreboard/models"
)

// NewTestCase is the input to CreateTestCase. A nil Weight means 1.
type NewTestCase struct {
	Name       string
	RunCommand string
	TestData   string
	Weight     *int
	Suites     []models.Ref
}

func scanTestCase(row interface{ Scan(...any) error }) (models.TestCase, error) {
	var tc models.TestCase
	var run, data sql.NullString
	err := row.Scan(&tc.ID, &tc.Name, &run, &data, &tc.Weight)
	tc.RunCommand = run.String
	tc.TestData = data.String
	return tc, err
}

func resolveTestCase(ctx context.Context, q queryer, ref models.Ref) (models.TestCase, error) {
	const cols = "SELECT id, name, run_command, test_data, weight FROM testcase "
	var row *sql.Row
	if ref.Key != "" {
		row = q.QueryRowContext(ctx, cols+"WHERE name = $1", ref.Key)
	} else {
		row = q.QueryRowContext(ctx, cols+"WHERE id = $1", ref.ID)
	}
	tc, err := scanTestCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tc, notFound("test case %s not found", ref)
	}
	if err != nil {
		return tc, fmt.Errorf("failed to load test case: %w", err)
	}
	return tc, nil
}

func resolveSuite(ctx context.Context, q queryer, ref models.Ref) (models.Suite, error) {
	if ref.Key == "" {
		return loadSuite(ctx, q, ref.ID)
	}
	su, err := scanSuite(q.QueryRowContext(ctx,
		"SELECT "+suiteColumns+" FROM suite WHERE name = $1", ref.Key))
	if errors.Is(err, sql.ErrNoRows) {
		return su, notFound("suite %s not found", ref)
	}
	if err != nil {
		return su, fmt.Errorf("failed to load suite: %w", err)
	}
	return su, nil
}

// CreateTestCase creates a test case and optionally attaches it to
// suites the caller manages.
func (s *Store) CreateTestCase(ctx context.Context, caller Caller, in NewTestCase) (models.TestCaseWithSuites, error) {
	var out models.TestCaseWithSuites
	if caller.Anonymous() {
		return out, forbidden("authentication required")
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return out, invalid("test case name is required")
	}
	weight := 1
	if in.Weight != nil {
		weight = *in.Weight
	}
	if weight < 1 {
		return out, invalid("weight must be at least 1")
	}

	out.TestCase = models.TestCase{Name: in.Name, RunCommand: in.RunCommand, TestData: in.TestData, Weight: weight}
	out.Suites = []models.SuiteRef{}

	err := s.writeTx(ctx, "create_testcase", func(tx *sql.Tx) error {
		seen := make(map[int64]bool)
		for _, ref := range in.Suites {
			su, err := resolveSuite(ctx, tx, ref)
			if err != nil {
				return err
			}
			if seen[su.ID] {
				return invalid("suite %s is listed more than once", ref)
			}
			seen[su.ID] = true
			if err := s.authorize(ctx, tx, caller, su.ID); err != nil {
				return err
			}
			out.Suites = append(out.Suites, models.SuiteRef{ID: su.ID, Name: su.Name, RankAlgorithm: su.RankAlgorithm})
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO testcase (name, run_command, test_data, weight)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, out.Name, nullString(out.RunCommand), nullString(out.TestData), out.Weight).Scan(&out.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return conflict("a test case named %q already exists", out.Name)
			}
			return fmt.Errorf("failed to insert test case: %w", err)
		}

		for _, su := range out.Suites {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO suite_testcase (suite_id, test_case_id) VALUES ($1, $2)", su.ID, out.ID)
			if err != nil {
				return fmt.Errorf("failed to attach test case: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return models.TestCaseWithSuites{}, err
	}

	slog.Info("test case created", "test_case_id", out.ID, "name", out.Name, "weight", out.Weight, "suites", len(out.Suites))
	return out, nil
}

// ListTestCases pages through all test cases by id, each with the suites
// that use it.
func (s *Store) ListTestCases(ctx context.Context, limit int, token string) (Page[models.TestCaseWithSuites], error) {
	var page Page[models.TestCaseWithSuites]
	limit = ClampLimit(limit, DefaultPageSize, MaxPageSize)
	var after int64
	if token != "" {
		var err error
		if after, err = decodeIDToken(token); err != nil {
			return page, err
		}
	}

	more := false
	err := s.readTx(ctx, "list_testcases", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			"SELECT id, name, run_command, test_data, weight FROM testcase WHERE id > $1 ORDER BY id LIMIT $2",
			after, limit+1)
		if err != nil {
			return fmt.Errorf("failed to query test cases: %w", err)
		}
		page.Items = []models.TestCaseWithSuites{}
		for rows.Next() {
			tc, err := scanTestCase(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan test case: %w", err)
			}
			page.Items = append(page.Items, models.TestCaseWithSuites{TestCase: tc, Suites: []models.SuiteRef{}})
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate test cases: %w", err)
		}

		if len(page.Items) > limit {
			page.Items = page.Items[:limit]
			more = true
		}
		return attachSuites(ctx, tx, page.Items)
	})
	if err != nil {
		return page, err
	}

	if more {
		next := encodeIDToken(page.Items[limit-1].ID)
		page.ContinueToken = &next
	}
	return page, nil
}

func attachSuites(ctx context.Context, q queryer, items []models.TestCaseWithSuites) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	index := make(map[int64]int, len(items))
	for i, tc := range items {
		ids[i] = tc.ID
		index[tc.ID] = i
	}

	rows, err := q.QueryContext(ctx, `
		SELECT st.test_case_id, s.id, s.name, s.rank_algorithm
		FROM suite_testcase st
		JOIN suite s ON s.id = st.suite_id
		WHERE st.test_case_id IN (`+placeholders(1, len(ids))+`)
		ORDER BY st.test_case_id, s.id
	`, int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("failed to query test case suites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tcID int64
		var ref models.SuiteRef
		if err := rows.Scan(&tcID, &ref.ID, &ref.Name, &ref.RankAlgorithm); err != nil {
			return fmt.Errorf("failed to scan test case suite: %w", err)
		}
		i := index[tcID]
		items[i].Suites = append(items[i].Suites, ref)
	}
	return rows.Err()
}

// CountTestCases returns the number of test cases.
func (s *Store) CountTestCases(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM testcase").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count test cases: %w", err)
	}
	return n, nil
}
