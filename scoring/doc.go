// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package scoring aggregates per-test-case scores into one session total.

# Algorithms

A suite picks one of two rank algorithms:

  - sum: the weighted sum of every score
  - avg: the weighted sum divided by the sum of weights (default)

Any other value is treated as avg.

	total, ok := scoring.ComputeTotalScore("avg", inputs)

ComputeTotalScore is pure: it never touches storage, so the recompute path
and its tests share exactly the same arithmetic.
*/
package scoring
