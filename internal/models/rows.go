package models

// RawRow is the tagged union handed over by source providers. Each source has
// its own shape; the normalizer performs an explicit, total mapping per
// variant instead of probing loosely typed maps at every field access.
type RawRow interface {
	RowSource() Source
}

// LiveFeedRow is one flight as captured by the live departures scraper.
// The capture format is a known JSON schema, so fields are typed directly.
type LiveFeedRow struct {
	FlightNumber  string  `json:"flight_number"`
	Airline       string  `json:"airline"`
	OperatedBy    string  `json:"operated_by"`
	Status        string  `json:"status"`
	ScheduledTime string  `json:"scheduled_time"`
	ActualTime    string  `json:"actual_time"`
	DelayHours    float64 `json:"delay_hours"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	CaptureDate   string  `json:"capture_date"`
}

func (LiveFeedRow) RowSource() Source { return SourceLiveFeed }

// HistoricalRow is one row of a regulator CSV export. Column headers drift
// between publications, so the row keeps the raw header→value mapping and
// lets the normalizer match columns by synonym patterns.
type HistoricalRow struct {
	Columns map[string]string `json:"columns"`
}

func (HistoricalRow) RowSource() Source { return SourceHistoricalImport }
