package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jonechelon/matchfly-pseo/internal/dedup"
	"github.com/jonechelon/matchfly-pseo/internal/logging"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

// document is the on-disk shape of the JSON store: a flat flight list plus a
// metadata block.
type document struct {
	Flights  []models.FlightRecord `json:"flights"`
	Metadata Metadata              `json:"metadata"`
}

// JSONStore keeps the canonical store as a single JSON document on disk.
type JSONStore struct {
	path string
}

var _ Store = (*JSONStore)(nil)

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads the store document. A missing or zero-length file is an empty
// store, not an error; anything unparseable aborts the run.
func (s *JSONStore) Load(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Info("no existing store, starting empty", "path", s.path)
		return &Snapshot{Records: dedup.Store{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return &Snapshot{Records: dedup.Store{}}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("store %s is corrupt: %w", s.path, err)
	}

	records := make(dedup.Store, len(doc.Flights))
	for _, rec := range doc.Flights {
		key, err := dedup.DeriveKey(rec)
		if err != nil {
			logging.Warn("dropping stored record without canonical key", "error", err.Error())
			continue
		}
		records[key] = rec
	}
	return &Snapshot{Records: records, Metadata: doc.Metadata}, nil
}

// Save writes the snapshot to a temporary file and renames it over the old
// document, so readers never observe a half-written store.
func (s *JSONStore) Save(_ context.Context, snap *Snapshot) error {
	doc := document{
		Flights:  snap.SortedRecords(),
		Metadata: snap.Metadata,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".flights-db-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp store file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store %s: %w", s.path, err)
	}

	logging.Info("store saved", "path", s.path, "flights", len(doc.Flights))
	return nil
}
