package randtest

import (
	"encoding/json"
	"time"

	"gorandtest/domain/core"
)

// Record is the flat, serializable form of an Outcome used by the API and storage layers.
type Record struct {
	RunID        string    `json:"run_id" db:"run_id"`
	Method       string    `json:"method" db:"method"`
	Alternative  string    `json:"alternative" db:"alternative"`
	MCTA         float64   `json:"mct_a" db:"mct_a"`
	MCTB         float64   `json:"mct_b" db:"mct_b"`
	Statistic    float64   `json:"statistic" db:"statistic"`
	Hits         int       `json:"hits" db:"hits"`
	Permutations int       `json:"permutations" db:"permutations"`
	PValue       *float64  `json:"p_value" db:"p_value"`
	Seed         *int64    `json:"seed" db:"seed"`
	Workers      int       `json:"workers" db:"workers"`
	DataHash     string    `json:"data_hash" db:"data_hash"`
	StartedAt    time.Time `json:"started_at" db:"started_at"`
	DurationMS   int64     `json:"duration_ms" db:"duration_ms"`
}

// Record flattens the outcome. PValue is nil when it is undefined.
func (o *Outcome) Record() Record {
	var p *float64
	if v, err := o.PValue(); err == nil {
		p = &v
	}
	var seed *int64
	if s, ok := o.Seed(); ok {
		seed = &s
	}
	return Record{
		RunID:        o.runID.String(),
		Method:       string(o.method),
		Alternative:  string(o.alternative),
		MCTA:         o.mctA,
		MCTB:         o.mctB,
		Statistic:    o.statistic,
		Hits:         o.hits,
		Permutations: o.permutations,
		PValue:       p,
		Seed:         seed,
		Workers:      o.workers,
		DataHash:     o.dataHash.String(),
		StartedAt:    o.startedAt,
		DurationMS:   o.duration.Milliseconds(),
	}
}

// MarshalJSON encodes the outcome through its Record.
func (o *Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Record())
}

// OutcomeFromRecord rebuilds an Outcome read back from storage. The stored
// p-value is ignored; it is always derived from hits and permutations.
func OutcomeFromRecord(r Record) (*Outcome, error) {
	alt, err := ParseAlternative(r.Alternative)
	if err != nil {
		return nil, err
	}
	return NewOutcome(OutcomeParams{
		RunID:        core.RunID(r.RunID),
		Method:       Method(r.Method),
		Alternative:  alt,
		MCTA:         r.MCTA,
		MCTB:         r.MCTB,
		Statistic:    r.Statistic,
		Hits:         r.Hits,
		Permutations: r.Permutations,
		Seed:         r.Seed,
		Workers:      r.Workers,
		DataHash:     core.DataHash(r.DataHash),
		StartedAt:    r.StartedAt,
		Duration:     time.Duration(r.DurationMS) * time.Millisecond,
	}), nil
}
