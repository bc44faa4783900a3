package models

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies which collaborator reported a record.
type Source string

const (
	SourceLiveFeed         Source = "live_feed"
	SourceHistoricalImport Source = "historical_import"
)

// Status is the canonical disruption status of a flight.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusDelayed   Status = "delayed"
	StatusCancelled Status = "cancelled"
)

// FlightRecord is the canonical unit stored and rendered by the pipeline.
// Records are never mutated after merge; a replacement is a new value under
// the same canonical key.
type FlightRecord struct {
	AirlineName     string     `json:"airline_name"`
	FlightNumber    string     `json:"flight_number"`
	Origin          string     `json:"origin"`
	Destination     string     `json:"destination"`
	DestinationCode string     `json:"destination_code,omitempty"`
	OperatedBy      string     `json:"operated_by,omitempty"`
	Status          Status     `json:"status"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	ActualAt        *time.Time `json:"actual_at,omitempty"`
	DelayMinutes    int        `json:"delay_minutes"`
	Source          Source     `json:"source"`
	ObservedAt      time.Time  `json:"observed_at"`
}

// Renderable reports whether the record carries the fields a page needs.
// Records failing this are filtered out before the render stage.
func (r FlightRecord) Renderable() bool {
	return r.Status != "" && strings.TrimSpace(r.AirlineName) != "" && strings.TrimSpace(r.FlightNumber) != ""
}

// CanonicalKey is the deterministic identity of a flight event. Two rows that
// normalize to the same key refer to the same real-world event and collapse
// to one FlightRecord.
type CanonicalKey struct {
	Airline      string `json:"airline"`
	FlightNumber string `json:"flight_number"`
	Date         string `json:"date"` // YYYY-MM-DD of scheduled departure
}

func (k CanonicalKey) String() string {
	return fmt.Sprintf("%s-%s-%s", k.Airline, k.FlightNumber, k.Date)
}

// Less provides a stable total order for deterministic tie-breaking.
func (k CanonicalKey) Less(other CanonicalKey) bool {
	if k.Airline != other.Airline {
		return k.Airline < other.Airline
	}
	if k.FlightNumber != other.FlightNumber {
		return k.FlightNumber < other.FlightNumber
	}
	return k.Date < other.Date
}

// ArtifactRef points at a rendered artifact on disk.
type ArtifactRef struct {
	Key  CanonicalKey `json:"key"`
	Slug string       `json:"slug"`
	Path string       `json:"path"`
}
