package randtest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorandtest/domain/core"
)

// Alternative is the direction of the alternative hypothesis.
type Alternative string

const (
	TwoSided Alternative = "two_sided"
	Greater  Alternative = "greater"
	Less     Alternative = "less"
)

// Alternatives lists the accepted alternatives in their canonical order.
var Alternatives = []Alternative{TwoSided, Greater, Less}

// ParseAlternative validates s as an alternative hypothesis.
func ParseAlternative(s string) (Alternative, error) {
	switch a := Alternative(strings.TrimSpace(s)); a {
	case TwoSided, Greater, Less:
		return a, nil
	}
	return "", core.NewInvalidConfigurationError(core.ErrInvalidAlternative,
		fmt.Sprintf("%q is not one of two_sided, greater, less", s))
}

func (a Alternative) String() string { return string(a) }

// Hit reports whether a permuted statistic t counts against the observed tObs.
// Ties are hits in every direction.
func (a Alternative) Hit(t, tObs float64) bool {
	switch a {
	case Greater:
		return t >= tObs
	case Less:
		return t <= tObs
	default:
		return abs(t) >= abs(tObs)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Method names the kind of randomization test that produced an outcome.
type Method string

const (
	MethodSystematic Method = "Systematic"
	MethodMonteCarlo Method = "Monte Carlo"
)

func (m Method) String() string { return string(m) }

// Outcome is the immutable result of one run. Build it with NewOutcome.
type Outcome struct {
	runID        core.RunID
	method       Method
	alternative  Alternative
	mctA         float64
	mctB         float64
	statistic    float64
	hits         int
	permutations int
	seed         *int64
	workers      int
	dataHash     core.DataHash
	startedAt    time.Time
	duration     time.Duration
}

// OutcomeParams carries the values assembled at the end of a run.
type OutcomeParams struct {
	RunID        core.RunID
	Method       Method
	Alternative  Alternative
	MCTA         float64
	MCTB         float64
	Statistic    float64
	Hits         int
	Permutations int
	Seed         *int64
	Workers      int
	DataHash     core.DataHash
	StartedAt    time.Time
	Duration     time.Duration
}

// NewOutcome snapshots p into an Outcome. The seed is copied so later writes
// through the caller's pointer cannot reach the record.
func NewOutcome(p OutcomeParams) *Outcome {
	var seed *int64
	if p.Seed != nil {
		s := *p.Seed
		seed = &s
	}
	return &Outcome{
		runID:        p.RunID,
		method:       p.Method,
		alternative:  p.Alternative,
		mctA:         p.MCTA,
		mctB:         p.MCTB,
		statistic:    p.Statistic,
		hits:         p.Hits,
		permutations: p.Permutations,
		seed:         seed,
		workers:      p.Workers,
		dataHash:     p.DataHash,
		startedAt:    p.StartedAt,
		duration:     p.Duration,
	}
}

func (o *Outcome) RunID() core.RunID          { return o.runID }
func (o *Outcome) Method() Method             { return o.method }
func (o *Outcome) Alternative() Alternative   { return o.alternative }
func (o *Outcome) MCTA() float64              { return o.mctA }
func (o *Outcome) MCTB() float64              { return o.mctB }
func (o *Outcome) Statistic() float64         { return o.statistic }
func (o *Outcome) Hits() int                  { return o.hits }
func (o *Outcome) Permutations() int          { return o.permutations }
func (o *Outcome) Workers() int               { return o.workers }
func (o *Outcome) DataHash() core.DataHash    { return o.dataHash }
func (o *Outcome) StartedAt() time.Time       { return o.startedAt }
func (o *Outcome) Duration() time.Duration    { return o.duration }

// Seed returns the seed the run used and false when the caller supplied its own source.
func (o *Outcome) Seed() (int64, bool) {
	if o.seed == nil {
		return 0, false
	}
	return *o.seed, true
}

// PValue returns hits / permutations.
func (o *Outcome) PValue() (float64, error) {
	if o.permutations == 0 {
		return 0, core.ErrDivisionUndefined
	}
	return float64(o.hits) / float64(o.permutations), nil
}

// String renders one labeled line per field.
func (o *Outcome) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Method = %s\n", o.method)
	fmt.Fprintf(&b, "Alternative = %s\n", o.alternative)
	fmt.Fprintf(&b, "MCT(data of group A) = %s\n", FormatFloat(o.mctA))
	fmt.Fprintf(&b, "MCT(data of group B) = %s\n", FormatFloat(o.mctB))
	fmt.Fprintf(&b, "Observed test statistic value = %s\n", FormatFloat(o.statistic))
	fmt.Fprintf(&b, "Number of successes = %d\n", o.hits)
	fmt.Fprintf(&b, "Number of permutations = %d\n", o.permutations)
	if p, err := o.PValue(); err == nil {
		fmt.Fprintf(&b, "p value = %s\n", FormatFloat(p))
	} else {
		fmt.Fprintf(&b, "p value = undefined\n")
	}
	fmt.Fprintf(&b, "seed = %s", o.SeedString())
	return b.String()
}

// SeedString renders the seed or "none".
func (o *Outcome) SeedString() string {
	if s, ok := o.Seed(); ok {
		return strconv.FormatInt(s, 10)
	}
	return "none"
}

// FormatFloat prints v with six significant digits and no trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
