package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonechelon/matchfly-pseo/internal/config"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

// RowError reports why a raw row failed normalization. Callers can count and
// inspect failures; a failed row never aborts the batch.
type RowError struct {
	Reason string
	Detail string
}

func (e *RowError) Error() string {
	if e.Detail == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Failure reasons.
const (
	ReasonMissingField   = "missing_required_field"
	ReasonBadDatetime    = "unparseable_datetime"
	ReasonUnknownRowType = "unknown_row_type"
)

// Accepted header synonyms per canonical field. Matching is substring-based
// on the folded header name, so upstream schema drift doesn't need code
// changes.
var columnSynonyms = map[string][]string{
	"airline_code":  {"sigla_icao_empresa_aerea", "sigla_icao", "sigla", "empresa", "companhia", "icao_empresa"},
	"flight_number": {"numero_voo", "numero", "voo", "flight"},
	"origin":        {"icao_aerodromo_origem", "aeroporto_origem", "origem", "origin", "icao_origem", "aerodromo_origem"},
	"destination":   {"icao_aerodromo_destino", "aeroporto_destino", "destino", "destination", "icao_destino", "aerodromo_destino"},
	"scheduled":     {"partida_prevista", "data_partida_prevista", "data_prevista", "horario_previsto"},
	"actual":        {"partida_real", "data_partida_real", "data_real", "horario_real"},
	"status":        {"situacao_voo", "situacao", "status"},
}

// Accepted datetime layouts, tried in order; the first parse wins.
var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02T15:04:05",
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006"}

var (
	spaceRe         = regexp.MustCompile(`\s+`)
	carrierPrefixRe = regexp.MustCompile(`^[A-Z]{1,2}`)
	nonIdentRe      = regexp.MustCompile(`[^a-z0-9_]`)
	multiUnderRe    = regexp.MustCompile(`_+`)
)

// Normalizer turns heterogeneous raw rows into canonical FlightRecords. It is
// a pure function of the row plus the injected lookup tables.
type Normalizer struct {
	lookups config.Lookups
}

func New(lookups config.Lookups) *Normalizer {
	return &Normalizer{lookups: lookups}
}

// Normalize maps one raw row to a FlightRecord or explains why it can't.
func (n *Normalizer) Normalize(row models.RawRow) (models.FlightRecord, error) {
	switch r := row.(type) {
	case models.LiveFeedRow:
		return n.normalizeLiveFeed(r)
	case *models.LiveFeedRow:
		return n.normalizeLiveFeed(*r)
	case models.HistoricalRow:
		return n.normalizeHistorical(r)
	case *models.HistoricalRow:
		return n.normalizeHistorical(*r)
	default:
		return models.FlightRecord{}, &RowError{Reason: ReasonUnknownRowType, Detail: fmt.Sprintf("%T", row)}
	}
}

// NormalizeBatch normalizes every row, collecting records and failures
// side by side. One bad row never stops the rest.
func (n *Normalizer) NormalizeBatch(rows []models.RawRow) ([]models.FlightRecord, []error) {
	records := make([]models.FlightRecord, 0, len(rows))
	var failures []error

	for _, row := range rows {
		rec, err := n.Normalize(row)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		records = append(records, rec)
	}
	return records, failures
}

func (n *Normalizer) normalizeLiveFeed(row models.LiveFeedRow) (models.FlightRecord, error) {
	airline := strings.TrimSpace(row.Airline)
	if name, ok := n.lookups.AirlineNames[strings.ToUpper(airline)]; ok {
		airline = name
	}

	flightNumber := CleanFlightNumber(row.FlightNumber)
	if airline == "" || flightNumber == "" {
		return models.FlightRecord{}, &RowError{Reason: ReasonMissingField, Detail: "airline or flight number"}
	}

	scheduledAt, err := combineDateTime(row.CaptureDate, row.ScheduledTime)
	if err != nil {
		return models.FlightRecord{}, err
	}

	var actualAt *time.Time
	if strings.TrimSpace(row.ActualTime) != "" {
		t, err := combineDateTime(row.CaptureDate, row.ActualTime)
		if err == nil {
			actualAt = &t
		}
	}

	status := parseStatus(row.Status)
	// Capture rows may carry no status text at all; a departure after the
	// scheduled time is a delay regardless.
	if status == models.StatusScheduled && actualAt != nil && actualAt.After(scheduledAt) {
		status = models.StatusDelayed
	}
	delay := delayMinutes(status, scheduledAt, actualAt)
	if delay == 0 && status == models.StatusDelayed && row.DelayHours > 0 {
		// Scraper captures without an actual time carry an estimated delay.
		delay = int(row.DelayHours * 60)
	}

	origin := strings.ToUpper(strings.TrimSpace(row.Origin))
	if origin == "" {
		origin = "GRU"
	}

	rec := models.FlightRecord{
		AirlineName:  airline,
		FlightNumber: flightNumber,
		Origin:       origin,
		OperatedBy:   strings.TrimSpace(row.OperatedBy),
		Status:       status,
		ScheduledAt:  scheduledAt,
		ActualAt:     actualAt,
		DelayMinutes: delay,
		Source:       models.SourceLiveFeed,
		ObservedAt:   scheduledAt,
	}
	rec.Destination, rec.DestinationCode = n.resolveDestination(row.Destination)
	return rec, nil
}

func (n *Normalizer) normalizeHistorical(row models.HistoricalRow) (models.FlightRecord, error) {
	fields := identifyColumns(row.Columns)

	airlineCode := strings.ToUpper(strings.TrimSpace(fields["airline_code"]))
	flightNumber := CleanFlightNumber(fields["flight_number"])
	if airlineCode == "" || flightNumber == "" {
		return models.FlightRecord{}, &RowError{Reason: ReasonMissingField, Detail: "airline code or flight number"}
	}

	scheduledAt, err := parseDateTime(fields["scheduled"])
	if err != nil {
		return models.FlightRecord{}, err
	}

	var actualAt *time.Time
	if raw := strings.TrimSpace(fields["actual"]); raw != "" && raw != "nan" {
		if t, err := parseDateTime(raw); err == nil {
			actualAt = &t
		}
	}

	status := models.StatusDelayed
	if strings.Contains(strings.ToLower(fields["status"]), "cancel") {
		status = models.StatusCancelled
	} else if actualAt == nil || !actualAt.After(scheduledAt) {
		status = models.StatusScheduled
	}

	airline := airlineCode
	if name, ok := n.lookups.AirlineNames[airlineCode]; ok {
		airline = name
	}

	origin := strings.ToUpper(strings.TrimSpace(fields["origin"]))
	if origin == "SBGR" {
		origin = "GRU"
	}

	observedAt := scheduledAt
	if actualAt != nil {
		observedAt = *actualAt
	}

	rec := models.FlightRecord{
		AirlineName:  airline,
		FlightNumber: flightNumber,
		Origin:       origin,
		Status:       status,
		ScheduledAt:  scheduledAt,
		ActualAt:     actualAt,
		DelayMinutes: delayMinutes(status, scheduledAt, actualAt),
		Source:       models.SourceHistoricalImport,
		ObservedAt:   observedAt,
	}
	rec.Destination, rec.DestinationCode = n.resolveDestination(fields["destination"])
	return rec, nil
}

// resolveDestination keeps the free-text city and attaches the IATA code when
// the lookup knows it. A missing mapping is never an error.
func (n *Normalizer) resolveDestination(raw string) (city string, code string) {
	city = strings.TrimSpace(raw)
	if city == "" {
		return "", ""
	}
	if c, ok := n.lookups.CityCodes[strings.ToLower(city)]; ok {
		return city, c
	}
	// Raw value may already be a location code.
	upper := strings.ToUpper(city)
	if len(upper) == 3 && upper == city {
		return city, upper
	}
	return city, ""
}

// CleanFlightNumber strips whitespace, a leading carrier designator and
// leading zeros, leaving the stable numeric-or-alphanumeric form.
func CleanFlightNumber(raw string) string {
	s := spaceRe.ReplaceAllString(strings.TrimSpace(raw), "")
	s = carrierPrefixRe.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, "0")
	return s
}

// FoldColumnName lowercases a header, strips diacritics and squeezes every
// non-identifier run into a single underscore.
func FoldColumnName(col string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, col)
	if err != nil {
		folded = col
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	folded = nonIdentRe.ReplaceAllString(folded, "_")
	folded = multiUnderRe.ReplaceAllString(folded, "_")
	return strings.Trim(folded, "_")
}

// identifyColumns maps canonical field names to values by matching folded
// headers against the synonym lists. First match per field wins.
func identifyColumns(columns map[string]string) map[string]string {
	folded := make(map[string]string, len(columns))
	for header, value := range columns {
		folded[FoldColumnName(header)] = value
	}

	out := make(map[string]string, len(columnSynonyms))
	for field, synonyms := range columnSynonyms {
		for _, syn := range synonyms {
			found := ""
			for key := range folded {
				if strings.Contains(key, syn) {
					if found == "" || key < found {
						found = key
					}
				}
			}
			if found != "" {
				out[field] = strings.TrimSpace(folded[found])
				break
			}
		}
	}
	return out
}

func parseStatus(raw string) models.Status {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "cancel"):
		return models.StatusCancelled
	case strings.Contains(s, "atras") || strings.Contains(s, "delay"):
		return models.StatusDelayed
	default:
		return models.StatusScheduled
	}
}

// delayMinutes computes max(0, actual-scheduled); Cancelled and Scheduled
// force zero regardless of timestamps.
func delayMinutes(status models.Status, scheduledAt time.Time, actualAt *time.Time) int {
	if status != models.StatusDelayed || actualAt == nil {
		return 0
	}
	d := int(actualAt.Sub(scheduledAt).Minutes())
	if d < 0 {
		return 0
	}
	return d
}

func parseDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, &RowError{Reason: ReasonMissingField, Detail: "scheduled datetime"}
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &RowError{Reason: ReasonBadDatetime, Detail: raw}
}

func combineDateTime(dateStr, timeStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)
	if dateStr == "" || timeStr == "" {
		return time.Time{}, &RowError{Reason: ReasonMissingField, Detail: "capture date or time"}
	}

	var day time.Time
	var err error
	for _, layout := range dateLayouts {
		if day, err = time.Parse(layout, dateStr); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, &RowError{Reason: ReasonBadDatetime, Detail: dateStr}
	}

	for _, layout := range []string{"15:04", "15:04:05"} {
		if clock, err := time.Parse(layout, timeStr); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(),
				clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC), nil
		}
	}
	return time.Time{}, &RowError{Reason: ReasonBadDatetime, Detail: timeStr}
}
