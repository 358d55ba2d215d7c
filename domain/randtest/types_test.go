package randtest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorandtest/domain/core"
)

func TestParseAlternative(t *testing.T) {
	for _, alt := range Alternatives {
		got, err := ParseAlternative(string(alt))
		require.NoError(t, err)
		assert.Equal(t, alt, got)
	}

	got, err := ParseAlternative(" less ")
	require.NoError(t, err)
	assert.Equal(t, Less, got)

	for _, bad := range []string{"", "two-sided", "GREATER", "both"} {
		_, err := ParseAlternative(bad)
		assert.ErrorIs(t, err, core.ErrInvalidConfiguration, "input %q", bad)
		assert.ErrorIs(t, err, core.ErrInvalidAlternative, "input %q", bad)
	}
}

func TestAlternativeHit(t *testing.T) {
	tests := []struct {
		name string
		alt  Alternative
		t    float64
		tObs float64
		want bool
	}{
		{"two sided tie", TwoSided, -3.5, -3.5, true},
		{"two sided mirrored tie", TwoSided, 3.5, -3.5, true},
		{"two sided smaller", TwoSided, 1.5, -3.5, false},
		{"greater tie", Greater, -3.5, -3.5, true},
		{"greater above", Greater, 0, -3.5, true},
		{"greater below", Greater, -4, -3.5, false},
		{"less tie", Less, -3.5, -3.5, true},
		{"less above", Less, 0, -3.5, false},
		{"less below", Less, -4, -3.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.alt.Hit(tt.t, tt.tObs))
		})
	}
}

func sampleOutcome(hits, perms int, seed *int64) *Outcome {
	return NewOutcome(OutcomeParams{
		RunID:        core.NewRunID(),
		Method:       MethodSystematic,
		Alternative:  TwoSided,
		MCTA:         5.5,
		MCTB:         9,
		Statistic:    -3.5,
		Hits:         hits,
		Permutations: perms,
		Seed:         seed,
		Workers:      2,
		DataHash:     core.ComputeDataHash([]float64{5, 6}, []float64{8, 10}),
		StartedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Duration:     1500 * time.Millisecond,
	})
}

func TestOutcomePValue(t *testing.T) {
	p, err := sampleOutcome(2, 6, nil).PValue()
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, p, 1e-12)

	_, err = sampleOutcome(0, 0, nil).PValue()
	assert.ErrorIs(t, err, core.ErrDivisionUndefined)
}

func TestOutcomeSeedIsCopied(t *testing.T) {
	seed := int64(42)
	o := sampleOutcome(2, 6, &seed)
	seed = 7

	got, ok := o.Seed()
	require.True(t, ok)
	assert.Equal(t, int64(42), got)

	_, ok = sampleOutcome(2, 6, nil).Seed()
	assert.False(t, ok)
}

func TestOutcomeString(t *testing.T) {
	seed := int64(42)
	want := "Method = Systematic\n" +
		"Alternative = two_sided\n" +
		"MCT(data of group A) = 5.5\n" +
		"MCT(data of group B) = 9\n" +
		"Observed test statistic value = -3.5\n" +
		"Number of successes = 2\n" +
		"Number of permutations = 6\n" +
		"p value = 0.333333\n" +
		"seed = 42"
	assert.Equal(t, want, sampleOutcome(2, 6, &seed).String())

	assert.Contains(t, sampleOutcome(1, 6, nil).String(), "p value = 0.166667\nseed = none")
	assert.Contains(t, sampleOutcome(6, 6, nil).String(), "p value = 1\n")
	assert.Contains(t, sampleOutcome(0, 0, nil).String(), "p value = undefined\n")
}

func TestOutcomeRecordRoundTrip(t *testing.T) {
	seed := int64(-9)
	o := sampleOutcome(2, 6, &seed)

	raw, err := json.Marshal(o)
	require.NoError(t, err)

	var rec Record
	require.NoError(t, json.Unmarshal(raw, &rec))
	require.NotNil(t, rec.PValue)
	assert.InDelta(t, 1.0/3.0, *rec.PValue, 1e-12)
	assert.Equal(t, int64(1500), rec.DurationMS)

	back, err := OutcomeFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, o.String(), back.String())
	assert.Equal(t, o.RunID(), back.RunID())
	assert.Equal(t, o.Duration(), back.Duration())

	rec.Alternative = "sideways"
	_, err = OutcomeFromRecord(rec)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestOutcomeRecordUndefinedPValue(t *testing.T) {
	rec := sampleOutcome(0, 0, nil).Record()
	assert.Nil(t, rec.PValue)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"p_value":null`)

	back, err := OutcomeFromRecord(rec)
	require.NoError(t, err)
	_, err = back.PValue()
	assert.ErrorIs(t, err, core.ErrDivisionUndefined)
}
