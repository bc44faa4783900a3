package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonechelon/matchfly-pseo/internal/config"
	"github.com/jonechelon/matchfly-pseo/internal/constants"
	"github.com/jonechelon/matchfly-pseo/internal/dedup"
	"github.com/jonechelon/matchfly-pseo/internal/db/repositories"
	"github.com/jonechelon/matchfly-pseo/internal/index"
	"github.com/jonechelon/matchfly-pseo/internal/indexer"
	"github.com/jonechelon/matchfly-pseo/internal/logging"
	"github.com/jonechelon/matchfly-pseo/internal/metrics"
	"github.com/jonechelon/matchfly-pseo/internal/models"
	"github.com/jonechelon/matchfly-pseo/internal/models/entities"
	"github.com/jonechelon/matchfly-pseo/internal/normalize"
	"github.com/jonechelon/matchfly-pseo/internal/reconcile"
	"github.com/jonechelon/matchfly-pseo/internal/render"
	"github.com/jonechelon/matchfly-pseo/internal/store"
)

// Pipeline wires the stages together: normalize, merge, render, reconcile,
// persist, index. Configuration errors surface before any artifact or
// store write; per-record errors are isolated inside their stage.
type Pipeline struct {
	cfg         *config.Settings
	store       store.Store
	normalizer  *normalize.Normalizer
	renderer    *render.Renderer
	reconciler  *reconcile.Reconciler
	indexWriter *index.Writer
	indexClient *indexer.Client
	historyRepo *repositories.RunHistoryRepo
	registry    *metrics.MetricsRegistry
	now         func() time.Time
}

// New builds a pipeline. The renderer constructor runs here so that a broken
// render configuration fails the whole build step, before Run can touch disk.
func New(
	cfg *config.Settings,
	st store.Store,
	historyRepo *repositories.RunHistoryRepo,
	indexClient *indexer.Client,
	registry *metrics.MetricsRegistry,
) (*Pipeline, error) {
	renderer, err := render.NewRenderer(cfg)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:         cfg,
		store:       st,
		normalizer:  normalize.New(config.DefaultLookups()),
		renderer:    renderer,
		reconciler:  reconcile.New(cfg.FlightDir, cfg.ArchiveDir, cfg.OrphanPolicy),
		indexWriter: index.NewWriter(cfg.OutputDir, cfg.BaseURL, cfg.SiteDomain),
		indexClient: indexClient,
		historyRepo: historyRepo,
		registry:    registry,
		now:         time.Now,
	}, nil
}

// Run executes one full pass over the given raw rows. Running twice with the
// same input leaves the store and the artifact tree unchanged.
func (p *Pipeline) Run(ctx context.Context, event string, rows []models.RawRow) (*models.RunResult, error) {
	start := p.now()
	runID := uuid.NewString()
	log := logging.WithRun(runID, event)
	log.Infow("pipeline run starting", "input_rows", len(rows))

	result := &models.RunResult{RunID: runID, TotalInputRows: len(rows)}
	if p.registry != nil {
		for _, row := range rows {
			p.registry.RowsIngestedTotal.WithLabelValues(string(row.RowSource())).Inc()
		}
	}

	snap, err := p.store.Load(ctx)
	if err != nil {
		p.countRun(event, "error")
		return nil, err
	}
	log.Debugw("store loaded", "stage", constants.StageLoad, "records", len(snap.Records))

	records, failures := p.normalizer.NormalizeBatch(rows)
	result.NormalizationErrors = len(failures)
	log.Debugw("rows normalized", "stage", constants.StageNormalize,
		"records", len(records), "failures", len(failures))
	if p.registry != nil {
		for _, f := range failures {
			reason := "unknown"
			if re, ok := f.(*normalize.RowError); ok {
				reason = re.Reason
			}
			p.registry.NormalizationErrsTotal.WithLabelValues(reason).Inc()
		}
	}

	merged, stats := dedup.Merge(snap.Records, records)
	log.Debugw("records merged", "stage", constants.StageMerge, "store_size", len(merged))
	result.Imported = stats.Imported
	result.Upgraded = stats.Upgraded
	result.Duplicates = stats.Duplicates
	if p.registry != nil {
		p.registry.RecordsImportedTotal.Add(float64(stats.Imported))
		p.registry.RecordsUpgradedTotal.Add(float64(stats.Upgraded))
		p.registry.RecordsDuplicatesTotal.Add(float64(stats.Duplicates))
	}

	newSnap := store.NewSnapshot(merged, start)
	sorted := newSnap.SortedRecords()
	renderStart := p.now()
	outcomes, err := p.renderer.RenderAll(ctx, sorted)
	if err != nil {
		p.countRun(event, "error")
		return nil, err
	}
	if p.registry != nil {
		p.registry.RenderDuration.Observe(p.now().Sub(renderStart).Seconds())
	}

	var artifacts []models.ArtifactRef
	for _, o := range outcomes {
		switch o.State {
		case models.OutcomeRendered:
			result.Rendered++
			if o.Artifact != nil {
				artifacts = append(artifacts, *o.Artifact)
			}
		case models.OutcomeSkipped:
			result.Skipped++
		case models.OutcomeFailed:
			result.Failed++
			log.Warnw("record failed to render",
				"stage", constants.StageRender, "key", o.Key.String(), "reason", o.Reason)
		}
	}
	if p.registry != nil {
		p.registry.PagesRenderedTotal.Add(float64(result.Rendered))
		p.registry.PagesSkippedTotal.Add(float64(result.Skipped))
		p.registry.PagesFailedTotal.Add(float64(result.Failed))
	}

	// Artifacts belonging to any eligible record stay protected, including
	// ones whose render just failed. Only pages with no eligible record
	// behind them are orphans.
	keep := make(map[string]struct{}, len(sorted))
	for _, rec := range sorted {
		if p.renderer.Eligible(rec) {
			keep[render.SlugFor(rec)] = struct{}{}
		}
	}
	report, err := p.reconciler.Reconcile(ctx, keep)
	if err != nil {
		p.countRun(event, "error")
		return nil, err
	}
	result.Reconciliation = report
	log.Debugw("artifacts reconciled", "stage", constants.StageReconcile, "orphans", report.Orphans)
	if p.registry != nil {
		p.registry.OrphansHandledTotal.WithLabelValues("deleted").Add(float64(report.Deleted))
		p.registry.OrphansHandledTotal.WithLabelValues("archived").Add(float64(report.Archived))
		p.registry.OrphansHandledTotal.WithLabelValues("preserved").Add(float64(report.Preserved))
	}

	if err := p.renderer.RenderHome(ctx, sorted, p.cfg.HomepageSize); err != nil {
		p.countRun(event, "error")
		return nil, err
	}
	if err := p.indexWriter.WriteSitemap(artifacts, newSnap.Records); err != nil {
		p.countRun(event, "error")
		return nil, err
	}
	if err := p.indexWriter.WriteRobots(); err != nil {
		p.countRun(event, "error")
		return nil, err
	}
	if err := p.indexWriter.WriteSiteFiles(); err != nil {
		p.countRun(event, "error")
		return nil, err
	}

	// The store is persisted only once the whole artifact tree has been
	// regenerated. A failure in any earlier stage leaves the old snapshot in
	// place, and the next run re-imports the same rows idempotently.
	if err := p.store.Save(ctx, newSnap); err != nil {
		p.countRun(event, "error")
		return nil, err
	}

	if p.indexClient != nil && p.indexClient.Enabled() {
		urls := make([]string, 0, len(artifacts))
		for _, a := range artifacts {
			urls = append(urls, p.cfg.BaseURL+"/voo/"+a.Slug)
		}
		ok, failed := p.indexClient.NotifyBatch(ctx, urls, indexer.NotifyUpdated)
		log.Debugw("index submission finished", "stage", constants.StageIndex, "submitted", ok, "failed", failed)
	}

	result.DurationMillis = p.now().Sub(start).Milliseconds()
	if p.registry != nil {
		p.registry.RunDuration.WithLabelValues(event).Observe(float64(result.DurationMillis) / 1000)
		p.registry.StoreFlights.Set(float64(len(merged)))
		p.registry.LastRunEpoch.Set(float64(p.now().Unix()))
	}
	p.countRun(event, "ok")
	p.recordHistory(ctx, event, start, result)

	log.Infow("pipeline run finished",
		"imported", result.Imported,
		"upgraded", result.Upgraded,
		"duplicates", result.Duplicates,
		"normalization_errors", result.NormalizationErrors,
		"rendered", result.Rendered,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"orphans", result.Reconciliation.Orphans,
		"duration_ms", result.DurationMillis)

	return result, nil
}

// RunScheduled re-runs the pipeline on a fixed interval until the context is
// cancelled. fetch is called before each pass to pull fresh rows.
func (p *Pipeline) RunScheduled(ctx context.Context, event string, interval time.Duration, fetch func(context.Context) ([]models.RawRow, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runOnce := func() {
		rows, err := fetch(ctx)
		if err != nil {
			logging.Error("scheduled fetch failed", "error", err.Error())
			return
		}
		if _, err := p.Run(ctx, event, rows); err != nil {
			logging.Error("scheduled run failed", "error", err.Error())
		}
	}

	// Run immediately on start
	runOnce()

	for {
		select {
		case <-ticker.C:
			runOnce()
		case <-ctx.Done():
			logging.Info("scheduled pipeline shutting down")
			return
		}
	}
}

func (p *Pipeline) countRun(event, outcome string) {
	if p.registry != nil {
		p.registry.RunsTotal.WithLabelValues(event, outcome).Inc()
	}
}

func (p *Pipeline) recordHistory(ctx context.Context, event string, started time.Time, result *models.RunResult) {
	if p.historyRepo == nil {
		return
	}
	run := &entities.PipelineRun{
		ID:             result.RunID,
		Event:          event,
		StartedAt:      started,
		FinishedAt:     p.now(),
		TotalInputRows: result.TotalInputRows,
		Imported:       result.Imported,
		Upgraded:       result.Upgraded,
		Duplicates:     result.Duplicates,
		Rendered:       result.Rendered,
		Skipped:        result.Skipped,
		Failed:         result.Failed,
		Orphans:        result.Reconciliation.Orphans,
	}
	if err := p.historyRepo.RecordRun(ctx, run); err != nil {
		logging.Warn("failed to record run history", "run_id", result.RunID, "error", err.Error())
	}
}
