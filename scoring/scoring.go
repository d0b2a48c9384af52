// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import "math"

// Rank algorithm constants
const (
	AlgorithmAvg = "avg"
	AlgorithmSum = "sum"
)

// Input is one test case result inside a session.
// A nil Value counts as zero but its weight still counts.
type Input struct {
	Value  *float64
	Weight int
}

// NormalizeAlgorithm maps any unknown algorithm to avg.
func NormalizeAlgorithm(algorithm string) string {
	if algorithm == AlgorithmSum {
		return AlgorithmSum
	}
	return AlgorithmAvg
}

// ComputeTotalScore turns per-test-case scores into a single session total.
//
//	sum: Σ(value*weight)
//	avg: Σ(value*weight) / Σ(weight)
//
// ok is false when there is nothing to score: no inputs at all, or an
// average over a zero weight sum. Callers store that as a NULL total.
func ComputeTotalScore(algorithm string, scores []Input) (total float64, ok bool) {
	if len(scores) == 0 {
		return 0, false
	}

	var weightedSum float64
	var weightSum int
	for _, s := range scores {
		weightSum += s.Weight
		if s.Value == nil {
			continue
		}
		weightedSum += *s.Value * float64(s.Weight)
	}

	if NormalizeAlgorithm(algorithm) == AlgorithmSum {
		return weightedSum, true
	}

	if weightSum == 0 {
		return 0, false
	}
	return weightedSum / float64(weightSum), true
}

// Round2 rounds to 2 decimal places. Display only; ranking uses full precision.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*100) / 100
}
