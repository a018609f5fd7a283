// Package stat provides descriptive statistics over float64 samples.  These are the
// primitives used by the chart engines to derive per-subgroup values and grand
// aggregates.  All functions return NaN when the input is empty (or too short for the
// estimator) rather than a silent zero so that callers can distinguish "no data" from
// a legitimate zero-valued statistic.
package stat

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of values, or NaN when values is empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s / float64(len(values))
}

// MeanDefined returns the mean of the non-NaN entries in values.  Moving-range series
// carry NaN fill for warm-up indices; those entries do not contribute.  Returns NaN
// when no defined entries exist.
func MeanDefined(values []float64) float64 {
	s := 0.0
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		s += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return s / float64(n)
}

// Variance estimates the unbiased sample variance using Bessel's correction (N-1
// normalizer).  Returns NaN when values has fewer than two entries.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	m := Mean(values)
	v := 0.0
	for _, x := range values {
		d := x - m
		v += d * d
	}
	return v / float64(len(values)-1)
}

// StdDev is the square root of the unbiased sample variance.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// PopulationVariance uses an N normalizer and is biased when applied to a sample.
func PopulationVariance(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m := Mean(values)
	v := 0.0
	for _, x := range values {
		d := x - m
		v += d * d
	}
	return v / float64(len(values))
}

// PopulationStdDev is the square root of the population variance.
func PopulationStdDev(values []float64) float64 {
	return math.Sqrt(PopulationVariance(values))
}

// Min returns the smallest value, or NaN when values is empty.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Min(m, v)
	}
	return m
}

// Max returns the largest value, or NaN when values is empty.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return m
}

// Range returns Max - Min, the statistic charted by R and moving-range charts.
func Range(values []float64) float64 {
	return Max(values) - Min(values)
}

// Sum returns the total of all values.  An empty slice sums to zero.
func Sum(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s
}

// Median returns the middle value of the sorted data, averaging the two central
// values for even-length input.  Returns NaN when values is empty.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2.0
}
