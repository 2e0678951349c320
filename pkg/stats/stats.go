// Package stats provides the summary statistics reported alongside
// duplicate groups.
package stats

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// Percentile returns the p-th percentile (0-100) of xs using the empirical
// distribution. xs need not be sorted. Returns 0 for an empty slice.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return stat.Quantile(min(max(p, 0), 100)/100, stat.Empirical, sorted, nil)
}
