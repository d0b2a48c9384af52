// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/scoreboard/auth"
	"github.com/danielhkuo/scoreboard/cliparse"
	"github.com/danielhkuo/scoreboard/leaderboard"
	"github.com/danielhkuo/scoreboard/models"
	"github.com/danielhkuo/scoreboard/scoring"
)

type seedCase struct {
	name   string
	weight int
}

var seedSuites = []struct {
	name      string
	algorithm string
	cases     []seedCase
}{
	{"parser-bench", scoring.AlgorithmAvg, []seedCase{{"parse-small", 1}, {"parse-large", 3}, {"parse-unicode", 1}}},
	{"storage-bench", scoring.AlgorithmSum, []seedCase{{"write-seq", 2}, {"write-rand", 2}, {"read-scan", 1}}},
}

// seed loads demo users, suites, test cases and sessions. It does nothing
// when suites already exist. The demo users share a freshly generated
// password, which is returned; the admin gets it too unless one is
// configured.
func seed(ctx context.Context, store *leaderboard.Store, cfg cliparse.Config) (string, error) {
	n, err := store.CountSuites(ctx)
	if err != nil {
		return "", err
	}
	if n > 0 {
		slog.Info("seed skipped, suites already exist", "count", n)
		return "", nil
	}

	seedPassword, err := auth.GenerateID(8)
	if err != nil {
		return "", err
	}
	adminPassword := cfg.AdminPassword
	if adminPassword == "" {
		adminPassword = seedPassword
	}

	admin := leaderboard.Caller{Username: cfg.AdminUsername, Admin: true}
	if _, err := store.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, adminPassword); err != nil {
		return "", fmt.Errorf("failed to ensure admin: %w", err)
	}

	owners := []string{"ada", "grace"}
	for _, name := range owners {
		_, err := store.CreateUser(ctx, admin, leaderboard.NewUser{
			Name:     name,
			Username: name,
			Email:    name + "@example.com",
			Password: seedPassword,
		})
		if err != nil && leaderboard.KindOf(err) != leaderboard.KindConflict {
			return "", fmt.Errorf("failed to create user %s: %w", name, err)
		}
	}

	start := time.Now().UTC().AddDate(0, 0, -14)
	for i, spec := range seedSuites {
		owner := leaderboard.Caller{Username: owners[i%len(owners)]}
		su, err := store.CreateSuite(ctx, owner, spec.name, spec.algorithm)
		if err != nil {
			return "", fmt.Errorf("failed to create suite %s: %w", spec.name, err)
		}

		var cases []models.TestCase
		for _, c := range spec.cases {
			weight := c.weight
			tc, err := store.CreateTestCase(ctx, owner, leaderboard.NewTestCase{
				Name:       c.name,
				RunCommand: "make " + c.name,
				Weight:     &weight,
				Suites:     []models.Ref{{ID: su.ID}},
			})
			if err != nil {
				return "", fmt.Errorf("failed to create test case %s: %w", c.name, err)
			}
			cases = append(cases, tc.TestCase)
		}

		for day := 0; day < 14; day++ {
			scores := make([]leaderboard.NewScore, len(cases))
			for j, tc := range cases {
				v := float64(50 + (day*7+j*13)%50)
				scores[j] = leaderboard.NewScore{TestCaseID: tc.ID, Score: &v}
			}
			_, err := store.CreateSession(ctx, owner, leaderboard.NewSession{
				SuiteID:  su.ID,
				Date:     start.AddDate(0, 0, day).Format(time.RFC3339),
				CommitID: fmt.Sprintf("%07x", 0xabc000+day*257+i),
				Name:     fmt.Sprintf("nightly %d", day+1),
				Scores:   scores,
			})
			if err != nil {
				return "", fmt.Errorf("failed to create session: %w", err)
			}
		}
	}

	slog.Info("demo data loaded", "suites", len(seedSuites), "users", len(owners))
	return seedPassword, nil
}
