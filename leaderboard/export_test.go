// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

// SetBeforeRecompute installs a hook that runs ahead of every recompute.
func SetBeforeRecompute(s *Store, f func(sessionID int64) error) {
	s.beforeRecompute = f
}
