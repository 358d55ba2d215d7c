package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gorandtest/domain/core"
	"gorandtest/domain/randtest"
	"gorandtest/internal/errors"
	"gorandtest/ports"
)

const outcomeColumns = `run_id, method, alternative, mct_a, mct_b, statistic, hits, permutations,
	p_value, seed, workers, data_hash, started_at, duration_ms`

// outcomeRepository implements the OutcomeRepository interface
type outcomeRepository struct {
	db *sqlx.DB
}

// NewOutcomeRepository creates a new outcome repository
func NewOutcomeRepository(db *sqlx.DB) ports.OutcomeRepository {
	return &outcomeRepository{db: db}
}

// Save inserts an outcome row
func (r *outcomeRepository) Save(ctx context.Context, outcome *randtest.Outcome) error {
	query := `INSERT INTO randtest_outcomes (` + outcomeColumns + `) VALUES (
		:run_id, :method, :alternative, :mct_a, :mct_b, :statistic, :hits, :permutations,
		:p_value, :seed, :workers, :data_hash, :started_at, :duration_ms
	)`

	if _, err := r.db.NamedExecContext(ctx, query, outcome.Record()); err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to save run %s", outcome.RunID()), err)
	}
	return nil
}

// Get retrieves an outcome by run ID
func (r *outcomeRepository) Get(ctx context.Context, id core.RunID) (*randtest.Outcome, error) {
	query := `SELECT ` + outcomeColumns + ` FROM randtest_outcomes WHERE run_id = $1`

	var record randtest.Record
	if err := r.db.GetContext(ctx, &record, query, id.String()); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound(fmt.Sprintf("run %s", id))
		}
		return nil, errors.DatabaseError("failed to get run", err)
	}
	return randtest.OutcomeFromRecord(record)
}

// List returns outcomes, newest first
func (r *outcomeRepository) List(ctx context.Context, limit int) ([]*randtest.Outcome, error) {
	query := `SELECT ` + outcomeColumns + ` FROM randtest_outcomes ORDER BY started_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var records []randtest.Record
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	outcomes := make([]*randtest.Outcome, 0, len(records))
	for _, record := range records {
		outcome, err := randtest.OutcomeFromRecord(record)
		if err != nil {
			return nil, errors.Wrapf(err, "stored run %s is malformed", record.RunID)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}
