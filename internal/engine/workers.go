package engine

import (
	"fmt"
	"runtime"

	"gorandtest/domain/core"
)

// ProcessingUnits is the number of logical CPUs the worker count is clamped to.
func ProcessingUnits() int {
	return runtime.NumCPU()
}

// NormalizeWorkers resolves a configured worker count against units.
//
// Positive counts above units are clamped to units. Non-positive counts are
// relative: -1 means all units, -2 all but one, and so on; a result that is
// still non-positive falls back to units. Zero is rejected. The bool reports
// whether the request could not be honored, either too many workers or a
// relative count that leaves no unit.
func NormalizeWorkers(configured, units int) (int, bool, error) {
	if units < 1 {
		units = 1
	}
	switch {
	case configured == 0:
		return 0, false, core.NewInvalidConfigurationError(core.ErrInvalidWorkers, "worker count must not be 0")
	case configured > units:
		return units, true, nil
	case configured > 0:
		return configured, false, nil
	}
	w := units + configured + 1
	if w <= 0 {
		return units, true, nil
	}
	return w, false, nil
}

func clampWarning(configured, workers, units int) string {
	if configured > units {
		return fmt.Sprintf("only %d processing units available, using %d workers instead of %d", units, workers, configured)
	}
	return fmt.Sprintf("worker count %d leaves no processing unit, using all %d", configured, units)
}
