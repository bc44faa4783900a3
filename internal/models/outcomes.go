package models

// OutcomeState is the terminal state of one record's render attempt.
// Per record the renderer moves Pending -> Rendering -> terminal; terminal
// states are final for the run.
type OutcomeState string

const (
	OutcomeRendered OutcomeState = "rendered"
	OutcomeSkipped  OutcomeState = "skipped"
	OutcomeFailed   OutcomeState = "failed"
)

// Skip reasons. Skips are filtered records, distinct from render failures.
const (
	SkipNotEligible = "not_eligible"
)

// GenerationOutcome is the per-record result of the render stage.
type GenerationOutcome struct {
	Key      CanonicalKey `json:"key"`
	State    OutcomeState `json:"state"`
	Reason   string       `json:"reason,omitempty"`
	Artifact *ArtifactRef `json:"artifact,omitempty"`
}

// MergeStats counts what happened to each incoming record during a merge.
type MergeStats struct {
	Imported   int `json:"imported"`
	Upgraded   int `json:"upgraded"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// OrphanPolicy selects what reconciliation does with artifacts whose backing
// record was not regenerated this run.
type OrphanPolicy string

const (
	OrphanDelete   OrphanPolicy = "delete"
	OrphanPreserve OrphanPolicy = "preserve"
	OrphanArchive  OrphanPolicy = "archive"
)

// ReconciliationReport summarizes one reconciliation pass.
type ReconciliationReport struct {
	Policy    OrphanPolicy `json:"policy"`
	Orphans   int          `json:"orphans"`
	Deleted   int          `json:"deleted"`
	Archived  int          `json:"archived"`
	Preserved int          `json:"preserved"`
	Failures  int          `json:"failures"`
}

// RunResult is the stats object handed back to the caller after a pipeline
// run. The CLI layer turns it into exit codes and log lines.
type RunResult struct {
	RunID               string               `json:"run_id"`
	TotalInputRows      int                  `json:"total_input_rows"`
	Imported            int                  `json:"imported"`
	Upgraded            int                  `json:"upgraded"`
	Duplicates          int                  `json:"duplicates"`
	NormalizationErrors int                  `json:"normalization_errors"`
	Rendered            int                  `json:"rendered"`
	Skipped             int                  `json:"skipped"`
	Failed              int                  `json:"failed"`
	Reconciliation      ReconciliationReport `json:"reconciliation"`
	DurationMillis      int64                `json:"duration_ms"`
}
