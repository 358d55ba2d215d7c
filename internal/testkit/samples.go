// Package testkit generates reproducible two-group samples for tests.
package testkit

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// GroupSpec describes one normally distributed group
type GroupSpec struct {
	Size  int
	Mean  float64
	Sigma float64
}

// Experiment is a controlled two-group experiment with a fixed seed
type Experiment struct {
	Treatment GroupSpec
	Control   GroupSpec
	Seed      uint64
}

// Generate draws both groups. The same experiment always yields the same data.
func (e Experiment) Generate() (treatment, control []float64) {
	src := rand.NewPCG(e.Seed, e.Seed^0x9e3779b97f4a7c15)
	return draw(e.Treatment, src), draw(e.Control, src)
}

func draw(spec GroupSpec, src rand.Source) []float64 {
	sigma := spec.Sigma
	if sigma <= 0 {
		sigma = 1
	}
	dist := distuv.Normal{Mu: spec.Mean, Sigma: sigma, Src: src}
	out := make([]float64, spec.Size)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// WithOutliers returns a copy of sample whose first n values are replaced by
// value, for exercising robust measures.
func WithOutliers(sample []float64, n int, value float64) []float64 {
	out := append([]float64(nil), sample...)
	for i := 0; i < n && i < len(out); i++ {
		out[i] = value
	}
	return out
}
