// Package engine runs two-sample randomization tests: it resolves the run
// options, enumerates partitions of the pooled sample and counts how many are
// at least as extreme as the observed split.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"gorandtest/adapters/rng"
	"gorandtest/adapters/stats/mct"
	"gorandtest/adapters/stats/partition"
	"gorandtest/domain/core"
	"gorandtest/domain/randtest"
	"gorandtest/internal"
	"gorandtest/ports"
)

const (
	// SystematicSentinel as a permutation count selects full enumeration
	// when no Mode is set.
	SystematicSentinel = -1

	DefaultPermutations = 10000
	DefaultWorkers      = 1
)

// sourceName keys the random stream that draws Monte Carlo partitions.
const sourceName = "partition"

// Options configures one run. Start from DefaultOptions: a zero Workers or
// Permutations is rejected rather than defaulted.
type Options struct {
	MCT       mct.Func      // nil means mct.Mean
	Statistic mct.Statistic // nil means mct.DifferenceOfMCTs

	// Mode selects the enumeration. ModeAuto falls back to Permutations:
	// SystematicSentinel is systematic, a positive count is Monte Carlo.
	Mode         partition.Mode
	Permutations int

	Alternative randtest.Alternative // empty means two_sided
	Workers     int

	// Seed makes a Monte Carlo run reproducible. When nil a seed is drawn
	// from RNG and reported in the outcome.
	Seed *int64
	// Source, when set, is used as is and the outcome reports no seed.
	Source rand.Source
	RNG    ports.RNGPort // nil means the PCG adapter

	Progress ProgressFunc
	Logger   *internal.Logger

	// ProcessingUnits overrides runtime.NumCPU for worker clamping.
	ProcessingUnits int
}

// DefaultOptions returns the mean-difference, two-sided, single-worker Monte
// Carlo configuration.
func DefaultOptions() Options {
	return Options{
		MCT:          mct.Mean,
		Statistic:    mct.DifferenceOfMCTs,
		Permutations: DefaultPermutations,
		Alternative:  randtest.TwoSided,
		Workers:      DefaultWorkers,
	}
}

// ResolveMode turns the mode flag and permutation count into a concrete mode.
func ResolveMode(mode partition.Mode, permutations int) (partition.Mode, error) {
	switch mode {
	case partition.ModeSystematic:
		return partition.ModeSystematic, nil
	case partition.ModeMonteCarlo:
		if permutations < 1 {
			return 0, core.NewInvalidConfigurationError(core.ErrInvalidPermutations,
				fmt.Sprintf("monte carlo needs a positive permutation count, got %d", permutations))
		}
		return partition.ModeMonteCarlo, nil
	case partition.ModeAuto:
		if permutations == SystematicSentinel {
			return partition.ModeSystematic, nil
		}
		if permutations > 0 {
			return partition.ModeMonteCarlo, nil
		}
		return 0, core.NewInvalidConfigurationError(core.ErrInvalidPermutations,
			fmt.Sprintf("permutation count must be %d or positive, got %d", SystematicSentinel, permutations))
	}
	return 0, core.NewInvalidConfigurationError(nil, fmt.Sprintf("unknown mode %d", int(mode)))
}

// resolved holds everything validated before any goroutine starts.
type resolved struct {
	measure     mct.Func
	statistic   mct.Statistic
	alternative randtest.Alternative
	plan        partition.Plan
	count       int
	workers     int
	configured  int
	units       int
	clamped     bool
}

func resolve(groupA, groupB []float64, opts Options) (resolved, error) {
	var r resolved
	if len(groupA) == 0 {
		return r, core.NewInvalidConfigurationError(core.ErrEmptySample, "group A is empty")
	}
	if len(groupB) == 0 {
		return r, core.NewInvalidConfigurationError(core.ErrEmptySample, "group B is empty")
	}

	r.measure = opts.MCT
	if r.measure == nil {
		r.measure = mct.Mean
	}
	r.statistic = opts.Statistic
	if r.statistic == nil {
		r.statistic = mct.DifferenceOfMCTs
	}

	r.alternative = randtest.TwoSided
	if opts.Alternative != "" {
		alt, err := randtest.ParseAlternative(string(opts.Alternative))
		if err != nil {
			return r, err
		}
		r.alternative = alt
	}

	mode, err := ResolveMode(opts.Mode, opts.Permutations)
	if err != nil {
		return r, err
	}

	r.units = opts.ProcessingUnits
	if r.units < 1 {
		r.units = ProcessingUnits()
	}
	r.configured = opts.Workers
	r.workers, r.clamped, err = NormalizeWorkers(opts.Workers, r.units)
	if err != nil {
		return r, err
	}

	r.plan = partition.Plan{
		Mode:    mode,
		Pooled:  len(groupA) + len(groupB),
		GroupA:  len(groupA),
		Samples: opts.Permutations,
	}
	r.count, err = r.plan.Count()
	if err != nil {
		return r, err
	}
	return r, nil
}

// Run performs the randomization test of groupA against groupB. The inputs are
// not modified.
func Run(ctx context.Context, groupA, groupB []float64, opts Options) (*randtest.Outcome, error) {
	started := time.Now()

	r, err := resolve(groupA, groupB, opts)
	if err != nil {
		return nil, err
	}

	runID := core.NewRunID()
	logger := opts.Logger
	if logger == nil {
		logger = internal.NewDiscardLogger()
	}
	logger = logger.With("run_id", runID.String())

	if r.clamped {
		logger.Warn("%s", clampWarning(r.configured, r.workers, r.units))
	}

	seed, src, err := seedSource(ctx, r.plan.Mode, opts)
	if err != nil {
		return nil, err
	}

	pooled := make([]float64, 0, len(groupA)+len(groupB))
	pooled = append(pooled, groupA...)
	pooled = append(pooled, groupB...)
	observedA, observedB := pooled[:len(groupA)], pooled[len(groupA):]

	mctA, err := r.measure(observedA)
	if err != nil {
		return nil, core.NewComputationError(fmt.Errorf("group A: %w", err))
	}
	mctB, err := r.measure(observedB)
	if err != nil {
		return nil, core.NewComputationError(fmt.Errorf("group B: %w", err))
	}
	tObs, err := r.statistic(observedA, observedB, r.measure)
	if err != nil {
		return nil, core.NewComputationError(err)
	}

	method := randtest.MethodMonteCarlo
	if r.plan.Mode == partition.ModeSystematic {
		method = randtest.MethodSystematic
	}
	logger.Info("starting %s test: n_a=%d n_b=%d permutations=%d alternative=%s workers=%d",
		method, len(groupA), len(groupB), r.count, r.alternative, r.workers)

	evaluator := NewEvaluator(pooled, len(groupA), r.measure, r.statistic, r.alternative, tObs)

	// The observed split is one of the Monte Carlo permutations but is never
	// drawn, so its hit is counted here.
	var base Tally
	if r.plan.Mode == partition.ModeMonteCarlo {
		base.Evaluated = 1
		if r.alternative.Hit(tObs, tObs) {
			base.Hits = 1
		}
	}

	progress := func(t Tally) {
		total := base.Add(t)
		if logger.Enabled(internal.LogLevelDebug) {
			logger.Debug("progress %d/%d, running p value %s",
				total.Evaluated, r.count, randtest.FormatFloat(float64(total.Hits)/float64(total.Evaluated)))
		}
		if opts.Progress != nil {
			opts.Progress(total)
		}
	}

	executor := NewExecutor(evaluator, r.workers, progress)
	tally, err := executor.Execute(ctx, func(ctx context.Context, out chan<- []int) error {
		return partition.Enumerate(ctx, r.plan, src, out)
	})
	if err != nil {
		logger.Error("run aborted: %v", err)
		return nil, err
	}

	total := base.Add(tally)
	if total.Evaluated != r.count {
		return nil, core.NewComputationError(
			fmt.Errorf("evaluated %d of %d permutations", total.Evaluated, r.count))
	}

	outcome := randtest.NewOutcome(randtest.OutcomeParams{
		RunID:        runID,
		Method:       method,
		Alternative:  r.alternative,
		MCTA:         mctA,
		MCTB:         mctB,
		Statistic:    tObs,
		Hits:         total.Hits,
		Permutations: total.Evaluated,
		Seed:         seed,
		Workers:      r.workers,
		DataHash:     core.ComputeDataHash(groupA, groupB),
		StartedAt:    started,
		Duration:     time.Since(started),
	})
	logger.Info("finished in %s: %d of %d permutations are hits", outcome.Duration(), total.Hits, total.Evaluated)
	return outcome, nil
}

// seedSource decides the reported seed and the random source for a run.
// Systematic runs need no source; a supplied seed is still reported.
func seedSource(ctx context.Context, mode partition.Mode, opts Options) (*int64, rand.Source, error) {
	if opts.Source != nil {
		return nil, opts.Source, nil
	}
	if mode == partition.ModeSystematic {
		return opts.Seed, nil, nil
	}

	port := opts.RNG
	if port == nil {
		port = rng.NewPCGAdapter()
	}
	var seed int64
	if opts.Seed != nil {
		seed = *opts.Seed
	} else {
		drawn, err := port.DrawSeed(ctx)
		if err != nil {
			return nil, nil, err
		}
		seed = drawn
	}
	src, err := port.SeededSource(ctx, sourceName, seed)
	if err != nil {
		return nil, nil, err
	}
	return &seed, src, nil
}
