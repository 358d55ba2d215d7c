package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorandtest/adapters/stats/mct"
	"gorandtest/adapters/stats/partition"
	"gorandtest/domain/core"
	"gorandtest/domain/randtest"
)

func TestNormalizeWorkers(t *testing.T) {
	tests := []struct {
		configured int
		units      int
		want       int
		clamped    bool
	}{
		{1, 8, 1, false},
		{8, 8, 8, false},
		{16, 8, 8, true},
		{-1, 8, 8, false},
		{-2, 8, 7, false},
		{-8, 8, 1, false},
		{-9, 8, 8, true},
		{-100, 8, 8, true},
		{3, 0, 1, true},
	}
	for _, tt := range tests {
		got, clamped, err := NormalizeWorkers(tt.configured, tt.units)
		require.NoError(t, err)
		if got != tt.want || clamped != tt.clamped {
			t.Errorf("NormalizeWorkers(%d, %d) = %d, %v; want %d, %v",
				tt.configured, tt.units, got, clamped, tt.want, tt.clamped)
		}
	}

	_, _, err := NormalizeWorkers(0, 8)
	assert.ErrorIs(t, err, core.ErrInvalidWorkers)
}

func TestClampWarning(t *testing.T) {
	assert.Contains(t, clampWarning(16, 8, 8), "instead of 16")
	assert.Contains(t, clampWarning(-20, 8, 8), "using all 8")
}

func TestEvaluatorSplitKeepsPooledOrder(t *testing.T) {
	e := NewEvaluator([]float64{5, 6, 8, 10}, 2, mct.Mean, mct.DifferenceOfMCTs, randtest.TwoSided, -3.5)

	a, b := e.Split(partition.Observed(2))
	assert.Equal(t, []float64{5, 6}, a)
	assert.Equal(t, []float64{8, 10}, b)

	a, b = e.Split([]int{1, 3})
	assert.Equal(t, []float64{6, 10}, a)
	assert.Equal(t, []float64{5, 8}, b)
}

func TestEvaluatorEvaluate(t *testing.T) {
	pooled := []float64{5, 6, 8, 10}
	tests := []struct {
		alternative randtest.Alternative
		partition   []int
		hit         bool
	}{
		{randtest.TwoSided, []int{0, 1}, true},
		{randtest.TwoSided, []int{2, 3}, true},
		{randtest.TwoSided, []int{0, 3}, false},
		{randtest.Greater, []int{0, 2}, true},
		{randtest.Less, []int{0, 1}, true},
		{randtest.Less, []int{0, 2}, false},
	}
	for _, tt := range tests {
		e := NewEvaluator(pooled, 2, mct.Mean, mct.DifferenceOfMCTs, tt.alternative, -3.5)
		hit, err := e.Evaluate(tt.partition)
		require.NoError(t, err)
		assert.Equal(t, tt.hit, hit, "%s %v", tt.alternative, tt.partition)
	}
}

func TestExecutorMergesPartialSums(t *testing.T) {
	n, k := 10, 5
	pooled := make([]float64, n)
	for i := range pooled {
		pooled[i] = float64(i)
	}
	e := NewEvaluator(pooled, k, mct.Mean, mct.DifferenceOfMCTs, randtest.Greater, 0)

	produce := func(ctx context.Context, out chan<- []int) error {
		return partition.Systematic(ctx, n, k, out)
	}

	var single Tally
	for _, workers := range []int{1, 2, 5} {
		x := NewExecutor(e, workers, nil)
		x.flushEvery = 7
		tally, err := x.Execute(context.Background(), produce)
		require.NoError(t, err)
		assert.Equal(t, 252, tally.Evaluated)
		if workers == 1 {
			single = tally
		}
		assert.Equal(t, single, tally)
	}
}

func TestExecutorProducerErrorAborts(t *testing.T) {
	e := NewEvaluator([]float64{1, 2}, 1, mct.Mean, mct.DifferenceOfMCTs, randtest.TwoSided, 0)
	boom := errors.New("producer failed")

	x := NewExecutor(e, 2, nil)
	tally, err := x.Execute(context.Background(), func(ctx context.Context, out chan<- []int) error {
		out <- []int{0}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Tally{}, tally)
}
