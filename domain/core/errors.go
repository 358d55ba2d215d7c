package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors are raised before any permutation is evaluated
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidAlternative   = fmt.Errorf("%w: alternative", ErrInvalidConfiguration)
	ErrInvalidPermutations  = fmt.Errorf("%w: permutation count", ErrInvalidConfiguration)
	ErrInvalidWorkers       = fmt.Errorf("%w: worker count", ErrInvalidConfiguration)
	ErrInvalidTrim          = fmt.Errorf("%w: trim fraction", ErrInvalidConfiguration)
	ErrEmptySample          = fmt.Errorf("%w: empty sample", ErrInvalidConfiguration)
	ErrPartitionSize        = fmt.Errorf("%w: partition size", ErrInvalidConfiguration)

	// Computation errors abort the whole run
	ErrComputationFailure = errors.New("computation failure")

	// Outcome errors
	ErrDivisionUndefined = errors.New("p-value undefined: zero permutations")
)

// NewInvalidConfigurationError wraps one of the configuration sentinels with the offending detail.
func NewInvalidConfigurationError(kind error, reason string) error {
	if kind == nil {
		kind = ErrInvalidConfiguration
	}
	return fmt.Errorf("%w: %s", kind, reason)
}

// NewComputationError marks err as a failure raised while evaluating a partition.
func NewComputationError(cause error) error {
	return fmt.Errorf("%w: %w", ErrComputationFailure, cause)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

func IsComputationError(err error) bool {
	return errors.Is(err, ErrComputationFailure)
}

func IsDivisionUndefined(err error) bool {
	return errors.Is(err, ErrDivisionUndefined)
}
