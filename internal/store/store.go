package store

import (
	"context"
	"sort"
	"time"

	"github.com/jonechelon/matchfly-pseo/internal/dedup"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

// Metadata is the bookkeeping block persisted alongside the record list.
type Metadata struct {
	LastMergeAt  time.Time             `json:"last_merge_at"`
	TotalFlights int                   `json:"total_flights"`
	SourceCounts map[models.Source]int `json:"source_counts"`
}

// Snapshot is one consistent view of the canonical store.
type Snapshot struct {
	Records  dedup.Store
	Metadata Metadata
}

// NewSnapshot builds a snapshot from a merged record set, recomputing the
// metadata block.
func NewSnapshot(records dedup.Store, mergedAt time.Time) *Snapshot {
	counts := make(map[models.Source]int)
	for _, rec := range records {
		counts[rec.Source]++
	}
	return &Snapshot{
		Records: records,
		Metadata: Metadata{
			LastMergeAt:  mergedAt,
			TotalFlights: len(records),
			SourceCounts: counts,
		},
	}
}

// SortedRecords returns the records ordered by canonical key. Persisted
// documents and derived artifacts always see the same order, which is what
// makes re-serialization byte-stable.
func (s *Snapshot) SortedRecords() []models.FlightRecord {
	keys := make([]models.CanonicalKey, 0, len(s.Records))
	for k := range s.Records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	out := make([]models.FlightRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.Records[k])
	}
	return out
}

// Store persists canonical snapshots. Loading an absent store yields an empty
// snapshot; a corrupt store is a fatal error for the run. Save must replace
// the previous state atomically.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}
