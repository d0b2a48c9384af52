// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"context"
	"slices"
)

// Caller is the authenticated identity behind a request.
// The zero value is an anonymous caller.
type Caller struct {
	Username string
	Admin    bool
}

// Anonymous reports whether no user is attached.
func (c Caller) Anonymous() bool { return c.Username == "" }

// SuiteAccess describes the suite a caller wants to modify.
type SuiteAccess struct {
	SuiteID int64
	Owners  []string
}

// Guard decides whether a caller may manage a suite.
type Guard interface {
	CanManage(ctx context.Context, caller Caller, suite SuiteAccess) bool
}

// OwnerOrAdmin allows administrators and the suite's owners.
type OwnerOrAdmin struct{}

func (OwnerOrAdmin) CanManage(_ context.Context, caller Caller, suite SuiteAccess) bool {
	if caller.Anonymous() {
		return false
	}
	return caller.Admin || slices.Contains(suite.Owners, caller.Username)
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(ctx context.Context, caller Caller, suite SuiteAccess) bool

func (f GuardFunc) CanManage(ctx context.Context, caller Caller, suite SuiteAccess) bool {
	return f(ctx, caller, suite)
}
