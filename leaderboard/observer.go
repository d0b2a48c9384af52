// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import "time"

// Recompute outcomes reported to Observer.Recomputed.
const (
	RecomputeOK      = "ok"
	RecomputeSkipped = "skipped"
	RecomputeFailed  = "failed"
)

// Observer receives store events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	SessionCreated(suiteID int64)
	SessionDeleted(suiteID int64)
	ScoreWritten(op string)
	Recomputed(outcome string)
	QueryObserved(op string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) SessionCreated(int64)                {}
func (nopObserver) SessionDeleted(int64)                {}
func (nopObserver) ScoreWritten(string)                 {}
func (nopObserver) Recomputed(string)                   {}
func (nopObserver) QueryObserved(string, time.Duration) {}
