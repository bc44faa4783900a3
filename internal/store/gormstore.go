package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jonechelon/matchfly-pseo/internal/dedup"
	"github.com/jonechelon/matchfly-pseo/internal/logging"
	"github.com/jonechelon/matchfly-pseo/internal/models"
	gormModels "github.com/jonechelon/matchfly-pseo/internal/models/gorm"
)

// GormStore keeps the canonical store in a relational database. It implements
// the same full-snapshot contract as the JSON store: Save replaces the whole
// record set inside one transaction.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context) (*Snapshot, error) {
	var rows []gormModels.FlightRecordRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load store rows: %w", err)
	}

	records := make(dedup.Store, len(rows))
	for _, row := range rows {
		rec := recordFromRow(row)
		key, err := dedup.DeriveKey(rec)
		if err != nil {
			logging.Warn("dropping stored record without canonical key", "id", row.ID, "error", err.Error())
			continue
		}
		records[key] = rec
	}

	var meta gormModels.StoreMetadataRow
	err := s.db.WithContext(ctx).First(&meta, 1).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load store metadata: %w", err)
	}

	return &Snapshot{
		Records: records,
		Metadata: Metadata{
			LastMergeAt:  meta.LastMergeAt,
			TotalFlights: meta.TotalFlights,
			SourceCounts: map[models.Source]int{
				models.SourceLiveFeed:         meta.LiveCount,
				models.SourceHistoricalImport: meta.HistCount,
			},
		},
	}, nil
}

func (s *GormStore) Save(ctx context.Context, snap *Snapshot) error {
	records := snap.SortedRecords()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&gormModels.FlightRecordRow{}).Error; err != nil {
			return err
		}

		if len(records) > 0 {
			rows := make([]gormModels.FlightRecordRow, 0, len(records))
			for _, rec := range records {
				rows = append(rows, rowFromRecord(rec))
			}
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return err
			}
		}

		meta := gormModels.StoreMetadataRow{
			ID:           1,
			LastMergeAt:  snap.Metadata.LastMergeAt,
			TotalFlights: snap.Metadata.TotalFlights,
			LiveCount:    snap.Metadata.SourceCounts[models.SourceLiveFeed],
			HistCount:    snap.Metadata.SourceCounts[models.SourceHistoricalImport],
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&meta).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}

	logging.Info("store saved", "backend", "database", "flights", len(records))
	return nil
}

func rowFromRecord(rec models.FlightRecord) gormModels.FlightRecordRow {
	key, _ := dedup.DeriveKey(rec)
	return gormModels.FlightRecordRow{
		ID:              uuid.NewString(),
		KeyAirline:      key.Airline,
		KeyNumber:       key.FlightNumber,
		KeyDate:         key.Date,
		AirlineName:     rec.AirlineName,
		FlightNumber:    rec.FlightNumber,
		Origin:          rec.Origin,
		Destination:     rec.Destination,
		DestinationCode: rec.DestinationCode,
		OperatedBy:      rec.OperatedBy,
		Status:          string(rec.Status),
		ScheduledAt:     rec.ScheduledAt,
		ActualAt:        rec.ActualAt,
		DelayMinutes:    rec.DelayMinutes,
		Source:          string(rec.Source),
		ObservedAt:      rec.ObservedAt,
	}
}

func recordFromRow(row gormModels.FlightRecordRow) models.FlightRecord {
	var actual *time.Time
	if row.ActualAt != nil {
		t := *row.ActualAt
		actual = &t
	}
	return models.FlightRecord{
		AirlineName:     row.AirlineName,
		FlightNumber:    row.FlightNumber,
		Origin:          row.Origin,
		Destination:     row.Destination,
		DestinationCode: row.DestinationCode,
		OperatedBy:      row.OperatedBy,
		Status:          models.Status(row.Status),
		ScheduledAt:     row.ScheduledAt,
		ActualAt:        actual,
		DelayMinutes:    row.DelayMinutes,
		Source:          models.Source(row.Source),
		ObservedAt:      row.ObservedAt,
	}
}
