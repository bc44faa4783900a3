package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonechelon/matchfly-pseo/internal/config"
	"github.com/jonechelon/matchfly-pseo/internal/dedup"
	"github.com/jonechelon/matchfly-pseo/internal/logging"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

// Renderer turns canonical records into static HTML artifacts. One record
// failing never stops the others; every record ends in exactly one terminal
// outcome.
type Renderer struct {
	templates       *template.Template
	flightDir       string
	outputDir       string
	baseURL         string
	siteDomain      string
	affiliateLink   string
	minDelayMinutes int
	workers         int
}

// NewRenderer builds a renderer or refuses to. A missing affiliate link is the
// one configuration error that must abort before any artifact is touched,
// since every page embeds it.
func NewRenderer(cfg *config.Settings) (*Renderer, error) {
	if cfg.AffiliateLink == "" {
		return nil, fmt.Errorf("AFFILIATE_LINK is not set; refusing to render pages without it")
	}

	t, err := ParseTemplates()
	if err != nil {
		return nil, err
	}

	workers := cfg.RenderWorkers
	if workers < 1 {
		workers = 1
	}

	return &Renderer{
		templates:       t,
		flightDir:       cfg.FlightDir,
		outputDir:       cfg.OutputDir,
		baseURL:         cfg.BaseURL,
		siteDomain:      cfg.SiteDomain,
		affiliateLink:   cfg.AffiliateLink,
		minDelayMinutes: cfg.MinDelayMinutes,
		workers:         workers,
	}, nil
}

// Eligible reports whether a record deserves its own page: cancellations
// always, delays only at or above the configured threshold.
func (r *Renderer) Eligible(rec models.FlightRecord) bool {
	if !rec.Renderable() {
		return false
	}
	switch rec.Status {
	case models.StatusCancelled:
		return true
	case models.StatusDelayed:
		return rec.DelayMinutes >= r.minDelayMinutes
	default:
		return false
	}
}

// RenderAll renders every eligible record through a bounded worker pool and
// returns one outcome per input record, in input order.
func (r *Renderer) RenderAll(ctx context.Context, records []models.FlightRecord) ([]models.GenerationOutcome, error) {
	if err := os.MkdirAll(r.flightDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	outcomes := make([]models.GenerationOutcome, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, rec := range records {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			outcomes[i] = r.renderOne(rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rendered, skipped, failed int
	for _, o := range outcomes {
		switch o.State {
		case models.OutcomeRendered:
			rendered++
		case models.OutcomeSkipped:
			skipped++
		case models.OutcomeFailed:
			failed++
		}
	}
	logging.Info("render stage finished",
		"rendered", rendered, "skipped", skipped, "failed", failed)

	return outcomes, nil
}

// renderOne takes a single record to a terminal outcome. Panics inside
// template execution or file IO are contained here and become failures.
func (r *Renderer) renderOne(rec models.FlightRecord) (outcome models.GenerationOutcome) {
	key, err := keyOf(rec)
	if err != nil {
		return models.GenerationOutcome{State: models.OutcomeFailed, Reason: err.Error()}
	}
	outcome = models.GenerationOutcome{Key: key}

	defer func() {
		if p := recover(); p != nil {
			logging.Error("render panic contained", "key", key.String(), "panic", fmt.Sprint(p))
			outcome.State = models.OutcomeFailed
			outcome.Reason = fmt.Sprintf("panic: %v", p)
			outcome.Artifact = nil
		}
	}()

	if !r.Eligible(rec) {
		outcome.State = models.OutcomeSkipped
		outcome.Reason = models.SkipNotEligible
		return outcome
	}

	slug := SlugFor(rec)
	path := filepath.Join(r.flightDir, slug)
	data := PageData{
		Record:        rec,
		Slug:          slug,
		CanonicalURL:  r.baseURL + "/voo/" + slug,
		AffiliateLink: r.affiliateLink,
		SiteDomain:    r.siteDomain,
		UpdatedAt:     rec.ObservedAt,
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "flight.html.tmpl", data); err != nil {
		logging.Error("page render failed", "key", key.String(), "error", err.Error())
		outcome.State = models.OutcomeFailed
		outcome.Reason = err.Error()
		return outcome
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		logging.Error("page write failed", "key", key.String(), "error", err.Error())
		outcome.State = models.OutcomeFailed
		outcome.Reason = err.Error()
		return outcome
	}

	outcome.State = models.OutcomeRendered
	outcome.Artifact = &models.ArtifactRef{Key: key, Slug: slug, Path: path}
	return outcome
}

// RenderHome writes the homepage from the most recent eligible records,
// bounded by size. Ties on time break on canonical key so the page is
// deterministic.
func (r *Renderer) RenderHome(_ context.Context, records []models.FlightRecord, size int) error {
	eligible := make([]models.FlightRecord, 0, len(records))
	for _, rec := range records {
		if r.Eligible(rec) {
			eligible = append(eligible, rec)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].ObservedAt.Equal(eligible[j].ObservedAt) {
			return eligible[i].ObservedAt.After(eligible[j].ObservedAt)
		}
		ki, _ := keyOf(eligible[i])
		kj, _ := keyOf(eligible[j])
		return ki.Less(kj)
	})

	if size > 0 && len(eligible) > size {
		eligible = eligible[:size]
	}

	// The page timestamp is the newest observation in the store, so an
	// unchanged record set reproduces the homepage byte for byte.
	var updated time.Time
	for _, rec := range records {
		if rec.ObservedAt.After(updated) {
			updated = rec.ObservedAt
		}
	}

	data := HomeData{
		BaseURL:    r.baseURL,
		SiteDomain: r.siteDomain,
		UpdatedAt:  updated,
		TotalCount: len(records),
	}
	for _, rec := range eligible {
		data.Cards = append(data.Cards, Card{Record: rec, Slug: SlugFor(rec)})
	}
	for _, rec := range records {
		switch rec.Status {
		case models.StatusDelayed:
			data.DelayedCount++
		case models.StatusCancelled:
			data.CancelledCount++
		}
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "home.html.tmpl", data); err != nil {
		return fmt.Errorf("failed to render homepage: %w", err)
	}
	return writeFileAtomic(filepath.Join(r.outputDir, "index.html"), buf.Bytes())
}

func keyOf(rec models.FlightRecord) (models.CanonicalKey, error) {
	return dedup.DeriveKey(rec)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".page-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
