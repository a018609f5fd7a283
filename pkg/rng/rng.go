// Package rng provides seedable random sources for generating stable process data
// in tests and examples.
package rng

import (
	"math"
	"math/rand"
)

// RNG is a random number generator producing one observation per call.
type RNG interface {
	Rand() float64
}

var _ RNG = &NormalRNG{}
var _ RNG = &PoissonRNG{}

// NormalRNG generates normally distributed observations, the model for an
// in-control variables process.
type NormalRNG struct {
	mean  float64
	stdev float64
	r     *rand.Rand
}

// NewNormalRNG returns a seeded normal source.  Fixed seeds keep test data stable.
func NewNormalRNG(mean, stdev float64, seed int64) *NormalRNG {
	return &NormalRNG{
		mean:  mean,
		stdev: stdev,
		r:     rand.New(rand.NewSource(seed)),
	}
}

func (r *NormalRNG) Rand() float64 {
	return r.r.NormFloat64()*r.stdev + r.mean
}

// Subgroup draws n observations as one subgroup.
func (r *NormalRNG) Subgroup(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Rand()
	}
	return out
}

// PoissonRNG generates Poisson-distributed counts, the model for an in-control
// defect-count process.
type PoissonRNG struct {
	lambda float64
	r      *rand.Rand
}

// NewPoissonRNG returns a seeded Poisson source with the given rate.
func NewPoissonRNG(lambda float64, seed int64) *PoissonRNG {
	return &PoissonRNG{
		lambda: lambda,
		r:      rand.New(rand.NewSource(seed)),
	}
}

// Rand draws one count by inversion (Knuth's method), adequate for the small
// rates used in test fixtures.
func (r *PoissonRNG) Rand() float64 {
	l := math.Exp(-r.lambda)
	k, p := 0, 1.0
	for {
		p *= r.r.Float64()
		if p <= l {
			return float64(k)
		}
		k++
	}
}
