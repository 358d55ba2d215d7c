// Package partition enumerates the group-A index subsets of a pooled dataset,
// either exhaustively or by seeded random sampling.
package partition

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/combin"
	"gonum.org/v1/gonum/stat/sampleuv"

	"gorandtest/domain/core"
)

// Mode selects the enumeration strategy.
type Mode int

const (
	// ModeAuto defers the choice to the permutation count sentinel.
	ModeAuto Mode = iota
	ModeSystematic
	ModeMonteCarlo
)

func (m Mode) String() string {
	switch m {
	case ModeSystematic:
		return "systematic"
	case ModeMonteCarlo:
		return "monte_carlo"
	default:
		return "auto"
	}
}

// Plan describes one enumeration.
type Plan struct {
	Mode   Mode
	Pooled int // n, size of the pooled dataset
	GroupA int // n_a, size of every emitted subset
	// Samples is the Monte Carlo permutation count, observed split included.
	// It is ignored in systematic mode.
	Samples int
}

// Validate checks the plan before any partition is produced.
func (p Plan) Validate() error {
	if p.GroupA < 1 {
		return core.NewInvalidConfigurationError(core.ErrPartitionSize,
			fmt.Sprintf("group A size %d must be at least 1", p.GroupA))
	}
	if p.GroupA > p.Pooled {
		return core.NewInvalidConfigurationError(core.ErrPartitionSize,
			fmt.Sprintf("group A size %d exceeds pooled size %d", p.GroupA, p.Pooled))
	}
	switch p.Mode {
	case ModeSystematic:
		if overflows(p.Pooled, p.GroupA) {
			return core.NewInvalidConfigurationError(core.ErrInvalidPermutations,
				fmt.Sprintf("C(%d, %d) is too large to enumerate", p.Pooled, p.GroupA))
		}
	case ModeMonteCarlo:
		if p.Samples < 1 {
			return core.NewInvalidConfigurationError(core.ErrInvalidPermutations,
				fmt.Sprintf("monte carlo needs at least 1 permutation, got %d", p.Samples))
		}
	default:
		return core.NewInvalidConfigurationError(nil, fmt.Sprintf("unresolved enumeration mode %s", p.Mode))
	}
	return nil
}

// Count is the number of permutations the plan accounts for.
func (p Plan) Count() (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if p.Mode == ModeSystematic {
		return combin.Binomial(p.Pooled, p.GroupA), nil
	}
	return p.Samples, nil
}

// overflows reports whether Binomial(n, k) or its running product would not fit in an int.
func overflows(n, k int) bool {
	limit := math.Log(float64(math.MaxInt))
	return combin.LogGeneralizedBinomial(float64(n), float64(k))+math.Log(float64(n)+1) >= limit
}

// Observed returns the unpermuted split {0, ..., k-1}.
func Observed(k int) []int {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Systematic sends every size-k subset of {0..n-1} to out in lexicographic
// order. It stops early with ctx.Err() when ctx is cancelled. out is not closed.
func Systematic(ctx context.Context, n, k int, out chan<- []int) error {
	gen := combin.NewCombinationGenerator(n, k)
	for gen.Next() {
		select {
		case out <- gen.Combination(nil):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// MonteCarlo sends samples-1 uniformly drawn size-k subsets of {0..n-1} to
// out. The observed split is the remaining permutation and is not sent. src
// must only be used by the calling goroutine. out is not closed.
func MonteCarlo(ctx context.Context, n, k, samples int, src rand.Source, out chan<- []int) error {
	for i := 0; i < samples-1; i++ {
		idx := make([]int, k)
		sampleuv.WithoutReplacement(idx, n, src)
		select {
		case out <- idx:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Enumerate validates plan and dispatches on its mode.
func Enumerate(ctx context.Context, plan Plan, src rand.Source, out chan<- []int) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	if plan.Mode == ModeSystematic {
		return Systematic(ctx, plan.Pooled, plan.GroupA, out)
	}
	if src == nil {
		return core.NewInvalidConfigurationError(nil, "monte carlo enumeration needs a random source")
	}
	return MonteCarlo(ctx, plan.Pooled, plan.GroupA, plan.Samples, src, out)
}
