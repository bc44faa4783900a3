package store

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jonechelon/matchfly-pseo/internal/dedup"
	"github.com/jonechelon/matchfly-pseo/internal/models"
	gormModels "github.com/jonechelon/matchfly-pseo/internal/models/gorm"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	if err := db.AutoMigrate(&gormModels.FlightRecordRow{}, &gormModels.StoreMetadataRow{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewGormStore(db)
}

func TestGormStoreRoundTrip(t *testing.T) {
	s := newTestGormStore(t)
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

	key, _ := dedup.DeriveKey(testRecord("GOL", "1234", models.SourceLiveFeed))
	rec, ok := loaded.Records[key]
	if !ok {
		t.Fatalf("expected record under key %v", key)
	}
	if rec.DelayMinutes != 50 || rec.Source != models.SourceLiveFeed {
		t.Errorf("record fields lost in round trip: %+v", rec)
	}
	if loaded.Metadata.TotalFlights != 2 {
		t.Errorf("expected metadata total 2, got %d", loaded.Metadata.TotalFlights)
	}
}

func TestGormStoreEmptyDatabase(t *testing.T) {
	s := newTestGormStore(t)

	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("empty database must not error: %v", err)
	}
	if len(snap.Records) != 0 {
		t.Errorf("expected empty store, got %d records", len(snap.Records))
	}
}

func TestGormStoreSaveReplacesPreviousState(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	first := testSnapshot(t,
		testRecord("GOL", "1234", models.SourceLiveFeed),
		testRecord("AZUL", "4050", models.SourceHistoricalImport),
	)
	if err := s.Save(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := testSnapshot(t, testRecord("KLM", "792", models.SourceLiveFeed))
	if err := s.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Records) != 1 {
		t.Fatalf("save must replace previous state, got %d records", len(loaded.Records))
	}
	key, _ := dedup.DeriveKey(testRecord("KLM", "792", models.SourceLiveFeed))
	if _, ok := loaded.Records[key]; !ok {
		t.Errorf("expected only the KLM record to remain")
	}
}
