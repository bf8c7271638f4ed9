// Package stats computes summary statistics over survey answer values.
package stats

import (
	"math"
	"slices"
)

// Bundle is the statistics summary of a set of answer values.
type Bundle struct {
	Mean   float64
	Median float64
	StdDev float64
}

// Summarize returns mean, median and sample standard deviation of values.
// Total: empty input yields a zero Bundle, fewer than two values yield StdDev 0.
// values is not modified.
func Summarize(values []int) Bundle {
	if len(values) == 0 {
		return Bundle{}
	}
	mean := Mean(values)
	return Bundle{
		Mean:   mean,
		Median: median(values),
		StdDev: stdDev(values, mean),
	}
}

// Mean returns the arithmetic mean of values, 0 for empty input.
func Mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// Finite reports whether every field is a finite number.
func (b Bundle) Finite() bool {
	for _, v := range []float64{b.Mean, b.Median, b.StdDev} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func median(values []int) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// stdDev is the Bessel-corrected sample standard deviation.
func stdDev(values []int, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := float64(v) - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
