package migration

import (
	"strings"
	"testing"
)

func TestStepsAreIdempotent(t *testing.T) {
	runner := NewRunner()
	if runner.Version() == "" {
		t.Fatal("Expected a migration version")
	}

	steps := runner.steps()
	if len(steps) == 0 {
		t.Fatal("Expected at least one migration step")
	}
	for _, s := range steps {
		if !strings.Contains(s.sql, "IF NOT EXISTS") {
			t.Errorf("Step %q is not idempotent", s.name)
		}
	}
	if !strings.Contains(steps[0].sql, "randtest_outcomes") {
		t.Errorf("Expected first step to create randtest_outcomes, got %q", steps[0].name)
	}
}
