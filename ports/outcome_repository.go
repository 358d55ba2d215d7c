package ports

import (
	"context"

	"gorandtest/domain/core"
	"gorandtest/domain/randtest"
)

// OutcomeRepository stores finished randomization test outcomes
type OutcomeRepository interface {
	// Save persists an outcome. Saving the same run twice is an error.
	Save(ctx context.Context, outcome *randtest.Outcome) error

	// Get returns the outcome of a run, or a NOT_FOUND error
	Get(ctx context.Context, id core.RunID) (*randtest.Outcome, error)

	// List returns the most recent outcomes first; limit <= 0 means no limit
	List(ctx context.Context, limit int) ([]*randtest.Outcome, error)
}
