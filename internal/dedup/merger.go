package dedup

import (
	"strings"

	"github.com/jonechelon/matchfly-pseo/internal/logging"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

// Store is the in-memory view of the canonical store: at most one record per
// canonical key (uniqueness invariant).
type Store map[models.CanonicalKey]models.FlightRecord

// KeyError reports a record that could not produce a canonical key. This
// should not happen for normalized input, but it must never abort a merge.
type KeyError struct {
	Field string
}

func (e *KeyError) Error() string {
	return "cannot derive canonical key: empty " + e.Field
}

// DeriveKey computes the deterministic identity of a record: folded airline,
// folded flight number and the scheduled date. Rows from any source that
// reduce to the same key describe the same real-world flight event.
func DeriveKey(rec models.FlightRecord) (models.CanonicalKey, error) {
	airline := foldKeyPart(rec.AirlineName)
	number := foldKeyPart(rec.FlightNumber)

	switch {
	case airline == "":
		return models.CanonicalKey{}, &KeyError{Field: "airline"}
	case number == "":
		return models.CanonicalKey{}, &KeyError{Field: "flight number"}
	case rec.ScheduledAt.IsZero():
		return models.CanonicalKey{}, &KeyError{Field: "scheduled date"}
	}

	return models.CanonicalKey{
		Airline:      airline,
		FlightNumber: number,
		Date:         rec.ScheduledAt.Format("2006-01-02"),
	}, nil
}

// Supersedes is the one asymmetric priority rule of the merge: a live
// observation replaces a backfilled historical record, never the other way
// around. First writer wins in every remaining case.
func Supersedes(existing, incoming models.FlightRecord) bool {
	return existing.Source == models.SourceHistoricalImport &&
		incoming.Source == models.SourceLiveFeed
}

// Merge folds incoming records into a copy of the existing store. The input
// store is left untouched. Order of the incoming batch does not affect the
// final store contents; only the priority rule decides collisions.
func Merge(existing Store, incoming []models.FlightRecord) (Store, models.MergeStats) {
	merged := make(Store, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}

	var stats models.MergeStats
	for _, rec := range incoming {
		key, err := DeriveKey(rec)
		if err != nil {
			logging.Warn("record excluded from merge", "error", err.Error())
			stats.Errors++
			continue
		}

		current, found := merged[key]
		switch {
		case !found:
			merged[key] = rec
			stats.Imported++
		case Supersedes(current, rec):
			merged[key] = rec
			stats.Upgraded++
		default:
			stats.Duplicates++
		}
	}
	return merged, stats
}

func foldKeyPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
