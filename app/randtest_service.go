package app

import (
	"context"
	"fmt"

	"gorandtest/adapters/stats/mct"
	"gorandtest/adapters/stats/partition"
	"gorandtest/domain/core"
	"gorandtest/domain/randtest"
	"gorandtest/internal"
	"gorandtest/internal/config"
	"gorandtest/internal/engine"
	"gorandtest/internal/errors"
	"gorandtest/internal/metrics"
	"gorandtest/ports"

	"golang.org/x/sync/semaphore"
)

// RandTestService runs randomization tests on behalf of the API and tools and
// keeps their outcomes
type RandTestService struct {
	repo     ports.OutcomeRepository
	rngPort  ports.RNGPort
	metrics  *metrics.Recorder
	logger   *internal.Logger
	defaults config.RunConfig

	// cpuSlots bounds the workers of all concurrent runs to the CPU count
	cpuSlots *semaphore.Weighted
	units    int
}

// RunRequest defines the inputs of one test. Nil fields take the service defaults.
type RunRequest struct {
	GroupA       []float64 `json:"group_a"`
	GroupB       []float64 `json:"group_b"`
	Measure      string    `json:"mct,omitempty"`
	TrimPercent  *int      `json:"trim_percent,omitempty"`
	Permutations *int      `json:"permutations,omitempty"`
	Systematic   bool      `json:"systematic,omitempty"`
	Alternative  string    `json:"alternative,omitempty"`
	Workers      *int      `json:"workers,omitempty"`
	Seed         *int64    `json:"seed,omitempty"`
}

// NewRandTestService creates a service. repo may be nil, in which case
// outcomes are not kept.
func NewRandTestService(repo ports.OutcomeRepository, rngPort ports.RNGPort, recorder *metrics.Recorder,
	logger *internal.Logger, defaults config.RunConfig) *RandTestService {
	if logger == nil {
		logger = internal.NewDiscardLogger()
	}
	units := engine.ProcessingUnits()
	return &RandTestService{
		repo:     repo,
		rngPort:  rngPort,
		metrics:  recorder,
		logger:   logger,
		defaults: defaults,
		cpuSlots: semaphore.NewWeighted(int64(units)),
		units:    units,
	}
}

// Options resolves a request into engine options without running anything
func (s *RandTestService) Options(req RunRequest) (engine.Options, error) {
	opts := engine.DefaultOptions()

	trim := s.defaults.TrimPercent
	if req.TrimPercent != nil {
		trim = *req.TrimPercent
	}
	if trim < 0 || trim > 49 {
		return opts, core.NewInvalidConfigurationError(core.ErrInvalidTrim,
			fmt.Sprintf("trim percent must be within 0-49, got %d", trim))
	}
	measure, err := mct.Lookup(req.Measure, float64(trim)/100)
	if err != nil {
		return opts, err
	}
	opts.MCT = measure

	opts.Permutations = s.defaults.Permutations
	if req.Permutations != nil {
		opts.Permutations = *req.Permutations
	}
	if req.Systematic {
		opts.Mode = partition.ModeSystematic
	}

	alternative := string(s.defaults.Alternative)
	if req.Alternative != "" {
		alternative = req.Alternative
	}
	opts.Alternative, err = randtest.ParseAlternative(alternative)
	if err != nil {
		return opts, err
	}

	opts.Workers = s.defaults.Workers
	if req.Workers != nil {
		opts.Workers = *req.Workers
	}
	opts.Seed = req.Seed
	opts.RNG = s.rngPort
	opts.Logger = s.logger
	return opts, nil
}

// checkBudget rejects runs above the configured permutation cap
func (s *RandTestService) checkBudget(req RunRequest, opts engine.Options) error {
	if s.defaults.MaxPermutations <= 0 {
		return nil
	}
	mode, err := engine.ResolveMode(opts.Mode, opts.Permutations)
	if err != nil {
		return err
	}
	plan := partition.Plan{
		Mode:    mode,
		Pooled:  len(req.GroupA) + len(req.GroupB),
		GroupA:  len(req.GroupA),
		Samples: opts.Permutations,
	}
	if plan.GroupA < 1 || len(req.GroupB) < 1 {
		return nil // the engine reports empty samples
	}
	count, err := plan.Count()
	if err != nil {
		return err
	}
	if count > s.defaults.MaxPermutations {
		return core.NewInvalidConfigurationError(core.ErrInvalidPermutations,
			fmt.Sprintf("%d permutations exceed the limit of %d", count, s.defaults.MaxPermutations))
	}
	return nil
}

// Run executes a test, records metrics and stores the outcome
func (s *RandTestService) Run(ctx context.Context, req RunRequest) (*randtest.Outcome, error) {
	opts, err := s.Options(req)
	if err == nil {
		err = s.checkBudget(req, opts)
	}
	if err != nil {
		s.observeFailure(opts.Alternative, err)
		return nil, err
	}

	// Wait for CPU slots; the engine reports an invalid worker count itself.
	if workers, _, werr := engine.NormalizeWorkers(opts.Workers, s.units); werr == nil {
		if err := s.cpuSlots.Acquire(ctx, int64(workers)); err != nil {
			return nil, err
		}
		defer s.cpuSlots.Release(int64(workers))
		opts.ProcessingUnits = s.units
	}

	if s.metrics != nil {
		done := s.metrics.Start()
		defer done()
	}

	outcome, err := engine.Run(ctx, req.GroupA, req.GroupB, opts)
	if err != nil {
		s.observeFailure(opts.Alternative, err)
		return nil, errors.Wrap(err, "randomization test failed")
	}
	if s.metrics != nil {
		s.metrics.ObserveOutcome(outcome)
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, outcome); err != nil {
			s.logger.Error("failed to store run %s: %v", outcome.RunID(), err)
			return outcome, errors.Wrap(err, "failed to store outcome")
		}
	}
	return outcome, nil
}

func (s *RandTestService) observeFailure(alternative randtest.Alternative, err error) {
	if s.metrics != nil {
		s.metrics.ObserveFailure(alternative, err)
	}
}

// Get returns a stored outcome by its run ID
func (s *RandTestService) Get(ctx context.Context, id string) (*randtest.Outcome, error) {
	if s.repo == nil {
		return nil, errors.NotFound("run " + id)
	}
	runID, err := core.ParseRunID(id)
	if err != nil {
		return nil, errors.InvalidInput("invalid run id", err)
	}
	return s.repo.Get(ctx, runID)
}

// List returns stored outcomes, newest first
func (s *RandTestService) List(ctx context.Context, limit int) ([]*randtest.Outcome, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.List(ctx, limit)
}
