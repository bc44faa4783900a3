package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonechelon/matchfly-pseo/internal/logging"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

// Reconciler compares the artifacts on disk with the set a run produced and
// applies the configured orphan policy to the leftovers.
type Reconciler struct {
	flightDir  string
	archiveDir string
	policy     models.OrphanPolicy
}

func New(flightDir, archiveDir string, policy models.OrphanPolicy) *Reconciler {
	return &Reconciler{flightDir: flightDir, archiveDir: archiveDir, policy: policy}
}

// Reconcile walks the artifact directory and handles every page not in the
// keep set. Failure on one orphan never stops the rest; failures leave the
// artifact in place, which is always the safe direction.
func (r *Reconciler) Reconcile(_ context.Context, keep map[string]struct{}) (models.ReconciliationReport, error) {
	report := models.ReconciliationReport{Policy: r.policy}

	entries, err := os.ReadDir(r.flightDir)
	if os.IsNotExist(err) {
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("failed to scan artifact directory: %w", err)
	}

	var orphans []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "voo-") || !strings.HasSuffix(name, ".html") {
			continue
		}
		if _, ok := keep[name]; !ok {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	report.Orphans = len(orphans)

	for _, name := range orphans {
		switch r.policy {
		case models.OrphanDelete:
			if err := os.Remove(filepath.Join(r.flightDir, name)); err != nil {
				logging.Error("failed to delete orphan", "slug", name, "error", err.Error())
				report.Failures++
				continue
			}
			report.Deleted++
		case models.OrphanArchive:
			if err := r.archive(name); err != nil {
				logging.Error("failed to archive orphan", "slug", name, "error", err.Error())
				report.Failures++
				continue
			}
			report.Archived++
		default:
			report.Preserved++
		}
	}

	if report.Orphans > 0 {
		logging.Info("reconciliation finished",
			"policy", string(r.policy),
			"orphans", report.Orphans,
			"deleted", report.Deleted,
			"archived", report.Archived,
			"preserved", report.Preserved,
			"failures", report.Failures)
	}
	return report, nil
}

func (r *Reconciler) archive(name string) error {
	if err := os.MkdirAll(r.archiveDir, 0o755); err != nil {
		return err
	}
	return os.Rename(filepath.Join(r.flightDir, name), filepath.Join(r.archiveDir, name))
}
