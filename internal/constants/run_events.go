package constants

// Run event types for the pipeline_runs history table
const (
	RunEventGenerate  = "SITE_GENERATE"
	RunEventImport    = "HISTORICAL_IMPORT"
	RunEventScheduled = "SCHEDULED_GENERATE"
)

// Pipeline stage names used in run-scoped log fields
const (
	StageLoad      = "load"
	StageNormalize = "normalize"
	StageMerge     = "merge"
	StageRender    = "render"
	StageReconcile = "reconcile"
	StageIndex     = "index"
)
