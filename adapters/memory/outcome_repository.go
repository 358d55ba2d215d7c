// Package memory keeps outcomes in process memory when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"gorandtest/domain/core"
	"gorandtest/domain/randtest"
	"gorandtest/internal/errors"
	"gorandtest/ports"
)

type outcomeRepository struct {
	mu    sync.RWMutex
	byID  map[core.RunID]*randtest.Outcome
	order []core.RunID
}

// NewOutcomeRepository creates an empty in-memory outcome repository
func NewOutcomeRepository() ports.OutcomeRepository {
	return &outcomeRepository{byID: make(map[core.RunID]*randtest.Outcome)}
}

func (r *outcomeRepository) Save(ctx context.Context, outcome *randtest.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := outcome.RunID()
	if _, exists := r.byID[id]; exists {
		return errors.DatabaseError(fmt.Sprintf("run %s already stored", id), nil)
	}
	r.byID[id] = outcome
	r.order = append(r.order, id)
	return nil
}

func (r *outcomeRepository) Get(ctx context.Context, id core.RunID) (*randtest.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	outcome, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("run %s", id))
	}
	return outcome, nil
}

func (r *outcomeRepository) List(ctx context.Context, limit int) ([]*randtest.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.order)
	if limit > 0 && limit < n {
		n = limit
	}
	outcomes := make([]*randtest.Outcome, 0, n)
	for i := len(r.order) - 1; i >= 0 && len(outcomes) < n; i-- {
		outcomes = append(outcomes, r.byID[r.order[i]])
	}
	return outcomes, nil
}
