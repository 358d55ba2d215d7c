package engine

import (
	"gorandtest/adapters/stats/mct"
	"gorandtest/domain/randtest"
)

// Evaluator scores partitions of a pooled sample against the observed statistic.
// It holds no mutable state, so one Evaluator is shared by every worker.
type Evaluator struct {
	pooled      []float64
	groupA      int
	measure     mct.Func
	statistic   mct.Statistic
	alternative randtest.Alternative
	observed    float64
}

// NewEvaluator builds an evaluator over pooled, where the first groupA values
// are the observed group A.
func NewEvaluator(pooled []float64, groupA int, measure mct.Func, statistic mct.Statistic,
	alternative randtest.Alternative, observed float64) *Evaluator {
	return &Evaluator{
		pooled:      pooled,
		groupA:      groupA,
		measure:     measure,
		statistic:   statistic,
		alternative: alternative,
		observed:    observed,
	}
}

// Split materializes the two groups of a partition. Group B keeps the pooled
// order of the complement, so the observed partition reproduces the inputs.
func (e *Evaluator) Split(partition []int) (groupA, groupB []float64) {
	inA := make([]bool, len(e.pooled))
	groupA = make([]float64, 0, len(partition))
	for _, idx := range partition {
		inA[idx] = true
		groupA = append(groupA, e.pooled[idx])
	}
	groupB = make([]float64, 0, len(e.pooled)-len(partition))
	for i, v := range e.pooled {
		if !inA[i] {
			groupB = append(groupB, v)
		}
	}
	return groupA, groupB
}

// Evaluate computes the statistic for partition and applies the hit rule.
func (e *Evaluator) Evaluate(partition []int) (bool, error) {
	groupA, groupB := e.Split(partition)
	t, err := e.statistic(groupA, groupB, e.measure)
	if err != nil {
		return false, err
	}
	return e.alternative.Hit(t, e.observed), nil
}
