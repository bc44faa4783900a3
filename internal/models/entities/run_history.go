package entities

import "time"

// PipelineRun is one row of the pipeline_runs history table.
type PipelineRun struct {
	ID             string    `db:"id"`              // UUID
	Event          string    `db:"event"`           // varchar(30)
	StartedAt      time.Time `db:"started_at"`      // timestamp
	FinishedAt     time.Time `db:"finished_at"`     // timestamp
	TotalInputRows int       `db:"total_input_rows"`
	Imported       int       `db:"imported"`
	Upgraded       int       `db:"upgraded"`
	Duplicates     int       `db:"duplicates"`
	Rendered       int       `db:"rendered"`
	Skipped        int       `db:"skipped"`
	Failed         int       `db:"failed"`
	Orphans        int       `db:"orphans"`
}
