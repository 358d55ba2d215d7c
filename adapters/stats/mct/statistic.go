package mct

import "fmt"

// Statistic combines the two groups of one split into a scalar.
type Statistic func(groupA, groupB []float64, measure Func) (float64, error)

// DifferenceOfMCTs is measure(groupA) - measure(groupB).
func DifferenceOfMCTs(groupA, groupB []float64, measure Func) (float64, error) {
	a, err := measure(groupA)
	if err != nil {
		return 0, fmt.Errorf("group A: %w", err)
	}
	b, err := measure(groupB)
	if err != nil {
		return 0, fmt.Errorf("group B: %w", err)
	}
	return a - b, nil
}
