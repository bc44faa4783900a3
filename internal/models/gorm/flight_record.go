package gorm

import "time"

// FlightRecordRow is the database shape of a canonical flight record, used by
// the GORM-backed store. The canonical key columns carry a composite unique
// index so the database enforces the one-record-per-key invariant too.
type FlightRecordRow struct {
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`

	// Canonical key columns (folded forms).
	KeyAirline string `gorm:"column:key_airline;type:varchar(100);not null;uniqueIndex:idx_canonical_key"`
	KeyNumber  string `gorm:"column:key_number;type:varchar(20);not null;uniqueIndex:idx_canonical_key"`
	KeyDate    string `gorm:"column:key_date;type:varchar(10);not null;uniqueIndex:idx_canonical_key"`

	// Display fields.
	AirlineName     string `gorm:"column:airline_name;type:varchar(100);not null"`
	FlightNumber    string `gorm:"column:flight_number;type:varchar(20);not null"`
	Origin          string `gorm:"column:origin;type:varchar(10)"`
	Destination     string `gorm:"column:destination;type:varchar(100)"`
	DestinationCode string `gorm:"column:destination_code;type:varchar(5)"`
	OperatedBy      string `gorm:"column:operated_by;type:varchar(100)"`

	Status       string     `gorm:"column:status;type:varchar(20);not null"`
	ScheduledAt  time.Time  `gorm:"column:scheduled_at;not null"`
	ActualAt     *time.Time `gorm:"column:actual_at"`
	DelayMinutes int        `gorm:"column:delay_minutes;not null;default:0"`
	Source       string     `gorm:"column:source;type:varchar(30);not null"`
	ObservedAt   time.Time  `gorm:"column:observed_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (FlightRecordRow) TableName() string {
	return "flight_records"
}

// StoreMetadataRow is the single-row metadata block of the database store.
type StoreMetadataRow struct {
	ID           int       `gorm:"column:id;primaryKey"`
	LastMergeAt  time.Time `gorm:"column:last_merge_at"`
	TotalFlights int       `gorm:"column:total_flights;not null;default:0"`
	LiveCount    int       `gorm:"column:live_count;not null;default:0"`
	HistCount    int       `gorm:"column:hist_count;not null;default:0"`
}

// TableName specifies the table name for GORM
func (StoreMetadataRow) TableName() string {
	return "store_metadata"
}
