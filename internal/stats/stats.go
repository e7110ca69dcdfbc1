// Package stats computes trailing-window rollups over metric series
// under a strict sufficiency policy: a window that cannot be filled
// yields no value at all, never a partial computation.
package stats

import (
	"math"

	"github.com/yhlin/chipmon/internal/market"
)

// Rounding selects how a computed statistic is rounded. Monetary and
// ratio metrics round to two decimals, count-like metrics (e.g. futures
// contracts, broker counts) to the nearest integer.
type Rounding int

const (
	RoundNone Rounding = iota
	RoundTwoDecimals
	RoundInteger
)

// Apply rounds v according to the policy.
func (r Rounding) Apply(v float64) float64 {
	switch r {
	case RoundTwoDecimals:
		return Round(v, 2)
	case RoundInteger:
		return math.Round(v)
	default:
		return v
	}
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

// TrailingSum sums the most recent k entries of the series. The second
// return value is false when the series holds fewer than k entries; a
// 3-entry series can never produce a 5-day sum.
func TrailingSum(s market.Series, k int) (float64, bool) {
	if k <= 0 || len(s) < k {
		return 0, false
	}

	sum := 0.0
	for _, p := range s[len(s)-k:] {
		sum += p.Value
	}
	return sum, true
}

// TrailingAverage is the arithmetic mean of the most recent k entries,
// with the same sufficiency rule as TrailingSum.
func TrailingAverage(s market.Series, k int) (float64, bool) {
	sum, ok := TrailingSum(s, k)
	if !ok {
		return 0, false
	}
	return sum / float64(k), true
}
