// Package stats summarizes per-file scores of a multi-file run.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a distribution of scores.
type Summary struct {
	Count  int     `json:"count" toon:"count"`
	Mean   float64 `json:"mean" toon:"mean"`
	StdDev float64 `json:"std_dev" toon:"std_dev"`
	Min    float64 `json:"min" toon:"min"`
	Median float64 `json:"median" toon:"median"`
	P90    float64 `json:"p90" toon:"p90"`
	Max    float64 `json:"max" toon:"max"`
}

// Summarize computes the summary of values. The input is not modified.
// An empty input yields the zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := Summary{
		Count:  len(sorted),
		Mean:   round(stat.Mean(sorted, nil)),
		Min:    floats.Min(sorted),
		Median: Percentile(sorted, 50),
		P90:    Percentile(sorted, 90),
		Max:    floats.Max(sorted),
	}
	if len(sorted) > 1 {
		s.StdDev = round(stat.StdDev(sorted, nil))
	}
	return s
}

// Percentile returns the p-th percentile of a sorted slice using the
// empirical distribution, so the result is always one of the inputs.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	q := math.Min(math.Max(float64(p)/100, 0), 1)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
