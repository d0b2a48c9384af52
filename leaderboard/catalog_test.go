// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/danielhkuo/scoreboard/leaderboard"
	"github.com/danielhkuo/scoreboard/models"
	"github.com/danielhkuo/scoreboard/testutil"
)

func TestCreateSuite(t *testing.T) {
	store, _ := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestUser(t, store, "alice", false)

	testCases := []struct {
		name      string
		caller    leaderboard.Caller
		suite     string
		algorithm string
		want      string
		wantErr   error
	}{
		{"sum", owner, "fast", "sum", models.RankSum, nil},
		{"avg", owner, "slow", "avg", models.RankAvg, nil},
		{"unknown algorithm becomes avg", owner, "odd", "median", models.RankAvg, nil},
		{"empty algorithm becomes avg", owner, "plain", "", models.RankAvg, nil},
		{"duplicate name", owner, "fast", "sum", "", leaderboard.ErrConflict},
		{"blank name", owner, "  ", "sum", "", leaderboard.ErrInvalidInput},
		{"anonymous", leaderboard.Caller{}, "anon", "sum", "", leaderboard.ErrForbidden},
		{"unknown user", leaderboard.Caller{Username: "ghost"}, "ghost", "sum", "", leaderboard.ErrForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			su, err := store.CreateSuite(ctx, tc.caller, tc.suite, tc.algorithm)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if su.RankAlgorithm != tc.want {
				t.Errorf("Expected algorithm %q, got %q", tc.want, su.RankAlgorithm)
			}
			if !su.Created.Equal(su.Updated) {
				t.Errorf("Expected created == updated on a new suite")
			}

			users, err := store.ListSuiteUsers(ctx, su.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(users) != 1 || users[0].Username != owner.Username {
				t.Errorf("Expected the creator to own the suite, got %+v", users)
			}
		})
	}

	n, err := store.CountSuites(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("Expected 4 suites, got %d", n)
	}
}

func TestListSuitesPagination(t *testing.T) {
	store, _ := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestUser(t, store, "alice", false)
	for i := 0; i < 5; i++ {
		testutil.CreateTestSuite(t, store, owner, fmt.Sprintf("suite-%d", i), models.RankSum)
	}

	var names []string
	token := ""
	for {
		page, err := store.ListSuites(ctx, 2, token)
		if err != nil {
			t.Fatal(err)
		}
		for _, su := range page.Items {
			names = append(names, su.Name)
		}
		if page.ContinueToken == nil {
			break
		}
		token = *page.ContinueToken
	}
	if len(names) != 5 || names[0] != "suite-0" || names[4] != "suite-4" {
		t.Errorf("Unexpected suite order %v", names)
	}

	if _, err := store.ListSuites(ctx, 2, "%%%"); !errors.Is(err, leaderboard.ErrInvalidInput) {
		t.Errorf("Expected invalid input for a malformed token, got %v", err)
	}
}

func TestCreateTestCase(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store, conn := testutil.SetupTestStore(t, leaderboard.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	owner := testutil.CreateTestUser(t, store, "alice", false)
	stranger := testutil.CreateTestUser(t, store, "mallory", false)
	suite := testutil.CreateTestSuite(t, store, owner, "nightly", models.RankSum)
	two := 2
	zero := 0

	testCases := []struct {
		name    string
		caller  leaderboard.Caller
		input   leaderboard.NewTestCase
		wantErr error
	}{
		{"zero weight", owner, leaderboard.NewTestCase{Name: "zero", Weight: &zero}, leaderboard.ErrInvalidInput},
		{"blank name", owner, leaderboard.NewTestCase{Name: ""}, leaderboard.ErrInvalidInput},
		{"anonymous", leaderboard.Caller{}, leaderboard.NewTestCase{Name: "anon"}, leaderboard.ErrForbidden},
		{"missing suite", owner, leaderboard.NewTestCase{Name: "lost", Suites: []models.Ref{{ID: 9999}}}, leaderboard.ErrNotFound},
		{"suite of another owner", stranger, leaderboard.NewTestCase{Name: "theft", Suites: []models.Ref{{ID: suite.ID}}}, leaderboard.ErrForbidden},
		{"suite listed twice", owner, leaderboard.NewTestCase{Name: "twice", Suites: []models.Ref{{ID: suite.ID}, {Key: "nightly"}}}, leaderboard.ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.CreateTestCase(ctx, tc.caller, tc.input); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Expected %v, got %v", tc.wantErr, err)
			}
			if n := countRows(t, conn, "testcase"); n != 0 {
				t.Errorf("Expected no test cases to be written, found %d", n)
			}
		})
	}

	now = now.Add(time.Minute)
	tc, err := store.CreateTestCase(ctx, owner, leaderboard.NewTestCase{
		Name:       "parse",
		RunCommand: "make parse",
		Weight:     &two,
		Suites:     []models.Ref{{Key: "nightly"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if tc.Weight != 2 || len(tc.Suites) != 1 || tc.Suites[0].ID != suite.ID {
		t.Errorf("Unexpected test case %+v", tc)
	}

	got, err := store.GetSuite(ctx, suite.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.TestCases) != 1 || got.TestCases[0].RunCommand != "make parse" {
		t.Errorf("Expected the suite to list the new test case, got %+v", got.TestCases)
	}
	if !got.Updated.Equal(suite.Updated) {
		t.Errorf("Expected attaching a test case to leave updated at %v, got %v", suite.Updated, got.Updated)
	}

	if _, err := store.CreateTestCase(ctx, owner, leaderboard.NewTestCase{Name: "parse"}); !errors.Is(err, leaderboard.ErrConflict) {
		t.Errorf("Expected conflict for a duplicate name, got %v", err)
	}

	plain, err := store.CreateTestCase(ctx, stranger, leaderboard.NewTestCase{Name: "plain"})
	if err != nil {
		t.Fatal(err)
	}
	if plain.Weight != 1 || len(plain.Suites) != 0 {
		t.Errorf("Expected default weight 1 and no suites, got %+v", plain)
	}

	page, err := store.ListTestCases(ctx, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.ContinueToken == nil || len(page.Items[0].Suites) != 1 {
		t.Fatalf("Unexpected first page %+v", page)
	}
	page, err = store.ListTestCases(ctx, 1, *page.ContinueToken)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.ContinueToken != nil || page.Items[0].Name != "plain" {
		t.Errorf("Unexpected last page %+v", page)
	}

	n, err := store.CountTestCases(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Expected 2 test cases, got %d", n)
	}
}

func TestSuiteTestCaseMembership(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store, _ := testutil.SetupTestStore(t, leaderboard.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	owner := testutil.CreateTestUser(t, store, "alice", false)
	stranger := testutil.CreateTestUser(t, store, "mallory", false)
	suite := testutil.CreateTestSuite(t, store, owner, "nightly", models.RankSum)
	a := testutil.AddTestCase(t, store, owner, "A", 1, suite.ID)
	b := testutil.AddTestCase(t, store, owner, "B", 1)
	c := testutil.AddTestCase(t, store, owner, "C", 1)

	testCases := []struct {
		name    string
		caller  leaderboard.Caller
		add     bool
		refs    []models.Ref
		wantErr error
	}{
		{"no refs", owner, true, nil, leaderboard.ErrInvalidInput},
		{"already a member", owner, true, []models.Ref{{ID: b.ID}, {ID: a.ID}}, leaderboard.ErrConflict},
		{"unknown test case", owner, true, []models.Ref{{ID: b.ID}, {Key: "nope"}}, leaderboard.ErrNotFound},
		{"listed twice", owner, true, []models.Ref{{ID: b.ID}, {Key: "B"}}, leaderboard.ErrInvalidInput},
		{"not the owner", stranger, true, []models.Ref{{ID: b.ID}}, leaderboard.ErrForbidden},
		{"remove a non-member", owner, false, []models.Ref{{ID: a.ID}, {ID: c.ID}}, leaderboard.ErrConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var err error
			if tc.add {
				_, err = store.AddTestCasesToSuite(ctx, tc.caller, suite.ID, tc.refs)
			} else {
				_, err = store.RemoveTestCasesFromSuite(ctx, tc.caller, suite.ID, tc.refs)
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Expected %v, got %v", tc.wantErr, err)
			}

			got, err := store.GetSuite(ctx, suite.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(got.TestCases) != 1 || got.TestCases[0].ID != a.ID {
				t.Errorf("Expected membership to be unchanged, got %+v", got.TestCases)
			}
		})
	}

	now = now.Add(time.Hour)
	got, err := store.AddTestCasesToSuite(ctx, owner, suite.ID, []models.Ref{{ID: b.ID}, {Key: "C"}})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Updated.Equal(suite.Updated) {
		t.Errorf("Expected membership changes to leave updated at %v, got %v", suite.Updated, got.Updated)
	}
	if len(got.TestCases) != 3 {
		t.Fatalf("Expected 3 test cases, got %d", len(got.TestCases))
	}

	got, err = store.RemoveTestCasesFromSuite(ctx, owner, suite.ID, []models.Ref{{Key: "A"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.TestCases) != 2 || got.TestCases[0].ID != b.ID {
		t.Errorf("Expected B and C to remain, got %+v", got.TestCases)
	}
	if !got.Updated.Equal(suite.Updated) {
		t.Errorf("Expected removal to leave updated at %v, got %v", suite.Updated, got.Updated)
	}

	page, err := store.ListSuiteTestCases(ctx, suite.ID, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != b.ID || page.ContinueToken == nil {
		t.Errorf("Unexpected first page %+v", page)
	}
}

func TestSuiteUserMembership(t *testing.T) {
	store, _ := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestUser(t, store, "alice", false)
	bob := testutil.CreateTestUser(t, store, "bob", false)
	testutil.CreateTestUser(t, store, "carol", false)
	suite := testutil.CreateTestSuite(t, store, owner, "nightly", models.RankSum)

	if _, err := store.AddUsersToSuite(ctx, bob, suite.ID, []string{"bob"}); !errors.Is(err, leaderboard.ErrForbidden) {
		t.Errorf("Expected forbidden for a non-owner, got %v", err)
	}
	if _, err := store.AddUsersToSuite(ctx, owner, suite.ID, []string{"bob", "nobody"}); !errors.Is(err, leaderboard.ErrNotFound) {
		t.Errorf("Expected not found for an unknown user, got %v", err)
	}
	if _, err := store.AddUsersToSuite(ctx, owner, suite.ID, []string{"bob", "alice"}); !errors.Is(err, leaderboard.ErrConflict) {
		t.Errorf("Expected conflict for an existing owner, got %v", err)
	}
	if _, err := store.AddUsersToSuite(ctx, owner, suite.ID, []string{"bob", "bob@example.com"}); !errors.Is(err, leaderboard.ErrInvalidInput) {
		t.Errorf("Expected invalid input for a user listed twice, got %v", err)
	}

	users, err := store.AddUsersToSuite(ctx, owner, suite.ID, []string{"bob", "carol@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("Expected 3 owners, got %d", len(users))
	}

	// A new owner may now manage the suite.
	if _, err := store.RemoveUsersFromSuite(ctx, bob, suite.ID, []string{"carol"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.RemoveUsersFromSuite(ctx, bob, suite.ID, []string{"carol"}); !errors.Is(err, leaderboard.ErrConflict) {
		t.Errorf("Expected conflict removing a non-owner, got %v", err)
	}

	users, err = store.ListSuiteUsers(ctx, suite.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0].Username != "alice" || users[1].Username != "bob" {
		t.Errorf("Unexpected owners %+v", users)
	}
}

func TestCustomGuard(t *testing.T) {
	open := leaderboard.GuardFunc(func(context.Context, leaderboard.Caller, leaderboard.SuiteAccess) bool { return true })
	store, _ := testutil.SetupTestStore(t, leaderboard.WithGuard(open))
	owner := testutil.CreateTestUser(t, store, "alice", false)
	other := testutil.CreateTestUser(t, store, "bob", false)
	suite := testutil.CreateTestSuite(t, store, owner, "nightly", models.RankSum)

	se := testutil.CreateTestSession(t, store, other, suite.ID, "")
	if se.Username != "bob" {
		t.Errorf("Expected the session to belong to bob, got %q", se.Username)
	}
}
