package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/jonechelon/matchfly-pseo/internal/models/entities"
)

// RunHistoryRepo persists one row per pipeline run.
type RunHistoryRepo struct {
	db *sqlx.DB
}

func NewRunHistoryRepo(db *sqlx.DB) *RunHistoryRepo {
	return &RunHistoryRepo{db: db}
}

// EnsureSchema creates the history table on first use.
func (r *RunHistoryRepo) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			id uuid PRIMARY KEY,
			event varchar(30) NOT NULL,
			started_at timestamp NOT NULL,
			finished_at timestamp NOT NULL,
			total_input_rows int NOT NULL DEFAULT 0,
			imported int NOT NULL DEFAULT 0,
			upgraded int NOT NULL DEFAULT 0,
			duplicates int NOT NULL DEFAULT 0,
			rendered int NOT NULL DEFAULT 0,
			skipped int NOT NULL DEFAULT 0,
			failed int NOT NULL DEFAULT 0,
			orphans int NOT NULL DEFAULT 0
		)
	`

	_, err := r.db.ExecContext(ctx, query)
	return err
}

func (r *RunHistoryRepo) RecordRun(ctx context.Context, run *entities.PipelineRun) error {
	const query = `
		INSERT INTO pipeline_runs (
			id, event, started_at, finished_at, total_input_rows,
			imported, upgraded, duplicates, rendered, skipped, failed, orphans)
		VALUES (
			:id, :event, :started_at, :finished_at, :total_input_rows,
			:imported, :upgraded, :duplicates, :rendered, :skipped, :failed, :orphans)
	`

	_, err := r.db.NamedExecContext(ctx, query, run)
	return err
}

// LastRunForEvent returns the most recent run of the given event type, or nil
// when the table has no such run yet.
func (r *RunHistoryRepo) LastRunForEvent(ctx context.Context, event string) (*entities.PipelineRun, error) {
	const query = `
		SELECT * FROM pipeline_runs
		WHERE event = $1
		ORDER BY finished_at DESC
		LIMIT 1
	`

	var run entities.PipelineRun
	err := r.db.GetContext(ctx, &run, query, event)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
