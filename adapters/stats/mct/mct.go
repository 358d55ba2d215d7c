// Package mct holds the measures of central tendency and the test statistics
// that combine them. Every function here is pure and safe to call from many
// goroutines at once.
package mct

import (
	"fmt"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"gorandtest/domain/core"
)

// Func maps a non-empty sample to a scalar summary.
type Func func(data []float64) (float64, error)

// DefaultTrimFraction is the share cut from each end by the tmean measure.
const DefaultTrimFraction = 0.2

// Mean is the arithmetic average.
func Mean(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, core.ErrEmptySample
	}
	m, err := stats.Mean(data)
	if err != nil {
		return 0, fmt.Errorf("mean: %w", err)
	}
	return m, nil
}

// Median is the middle value of the sorted sample.
func Median(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, core.ErrEmptySample
	}
	m, err := stats.Median(data)
	if err != nil {
		return 0, fmt.Errorf("median: %w", err)
	}
	return m, nil
}

// ValidateTrimFraction checks 0 <= fraction < 0.5.
func ValidateTrimFraction(fraction float64) error {
	if !(fraction >= 0 && fraction < 0.5) {
		return core.NewInvalidConfigurationError(core.ErrInvalidTrim,
			fmt.Sprintf("%g is outside [0, 0.5)", fraction))
	}
	return nil
}

// TrimmedMean sorts a copy of data, drops floor(fraction*n) values from each
// end and averages the remainder. data itself is left untouched.
func TrimmedMean(data []float64, fraction float64) (float64, error) {
	if err := ValidateTrimFraction(fraction); err != nil {
		return 0, err
	}
	n := len(data)
	if n == 0 {
		return 0, core.ErrEmptySample
	}

	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	cut := int(fraction * float64(n))
	kept := sorted[cut : n-cut]
	if len(kept) == 0 {
		return 0, core.NewInvalidConfigurationError(core.ErrInvalidTrim,
			fmt.Sprintf("trimming %g of %d values leaves nothing to average", fraction, n))
	}
	return floats.Sum(kept) / float64(len(kept)), nil
}

// NewTrimmedMean binds fraction into a Func.
func NewTrimmedMean(fraction float64) (Func, error) {
	if err := ValidateTrimFraction(fraction); err != nil {
		return nil, err
	}
	return func(data []float64) (float64, error) {
		return TrimmedMean(data, fraction)
	}, nil
}

// Names of the measures Lookup understands.
const (
	NameMean        = "mean"
	NameTrimmedMean = "tmean"
	NameMedian      = "median"
)

// Lookup resolves a measure by name. trimFraction only applies to tmean.
func Lookup(name string, trimFraction float64) (Func, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameMean, "arithmetic_mean":
		return Mean, nil
	case NameTrimmedMean, "trimmed_mean":
		return NewTrimmedMean(trimFraction)
	case NameMedian:
		return Median, nil
	}
	return nil, core.NewInvalidConfigurationError(nil,
		fmt.Sprintf("unknown measure of central tendency %q", name))
}
