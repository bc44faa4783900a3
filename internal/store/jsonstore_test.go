package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonechelon/matchfly-pseo/internal/dedup"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

func testRecord(airline, number string, source models.Source) models.FlightRecord {
	return models.FlightRecord{
		AirlineName:  airline,
		FlightNumber: number,
		Origin:       "GRU",
		Status:       models.StatusDelayed,
		ScheduledAt:  time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC),
		DelayMinutes: 50,
		Source:       source,
		ObservedAt:   time.Date(2025, 3, 10, 22, 50, 0, 0, time.UTC),
	}
}

func testSnapshot(t *testing.T, recs ...models.FlightRecord) *Snapshot {
	t.Helper()
	records := dedup.Store{}
	for _, rec := range recs {
		key, err := dedup.DeriveKey(rec)
		if err != nil {
			t.Fatalf("bad test record: %v", err)
		}
		records[key] = rec
	}
	return NewSnapshot(records, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC))
}

func TestJSONStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flights-db.json")
	s := NewJSONStore(path)
	ctx := context.Background()

	snap := testSnapshot(t,
		testRecord("GOL", "1234", models.SourceLiveFeed),
		testRecord("AZUL", "4050", models.SourceHistoricalImport),
	)
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded.Records))
	}
	if loaded.Metadata.TotalFlights != 2 {
		t.Errorf("expected metadata total 2, got %d", loaded.Metadata.TotalFlights)
	}
	if loaded.Metadata.SourceCounts[models.SourceLiveFeed] != 1 {
		t.Errorf("expected 1 live record in metadata, got %d", loaded.Metadata.SourceCounts[models.SourceLiveFeed])
	}
}

func TestJSONStoreMissingFileIsEmpty(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "absent.json"))

	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if len(snap.Records) != 0 {
		t.Errorf("expected empty store, got %d records", len(snap.Records))
	}
}

func TestJSONStoreEmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := NewJSONStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("empty file must not error: %v", err)
	}
	if len(snap.Records) != 0 {
		t.Errorf("expected empty store, got %d records", len(snap.Records))
	}
}

func TestJSONStoreCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewJSONStore(path).Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "corrupt") {
		t.Fatalf("expected corrupt store error, got %v", err)
	}
}

func TestJSONStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(filepath.Join(dir, "flights-db.json"))

	if err := s.Save(context.Background(), testSnapshot(t, testRecord("GOL", "1234", models.SourceLiveFeed))); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "flights-db.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the store file, found %v", names)
	}
}

func TestJSONStoreSaveIsByteStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flights-db.json")
	s := NewJSONStore(path)
	ctx := context.Background()

	snap := testSnapshot(t,
		testRecord("GOL", "1234", models.SourceLiveFeed),
		testRecord("AZUL", "4050", models.SourceHistoricalImport),
		testRecord("KLM", "792", models.SourceLiveFeed),
	)

	if err := s.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("identical snapshots must serialize to identical bytes")
	}
}

func TestSortedRecordsOrder(t *testing.T) {
	snap := testSnapshot(t,
		testRecord("KLM", "792", models.SourceLiveFeed),
		testRecord("AZUL", "4050", models.SourceHistoricalImport),
		testRecord("GOL", "1234", models.SourceLiveFeed),
	)

	sorted := snap.SortedRecords()
	if len(sorted) != 3 {
		t.Fatalf("expected 3 records, got %d", len(sorted))
	}
	if sorted[0].AirlineName != "AZUL" || sorted[1].AirlineName != "GOL" || sorted[2].AirlineName != "KLM" {
		t.Errorf("unexpected order: %s, %s, %s",
			sorted[0].AirlineName, sorted[1].AirlineName, sorted[2].AirlineName)
	}
}
