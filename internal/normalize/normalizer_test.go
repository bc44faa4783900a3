package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/jonechelon/matchfly-pseo/internal/config"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

func newTestNormalizer() *Normalizer {
	return New(config.DefaultLookups())
}

func TestNormalizeLiveFeed(t *testing.T) {
	n := newTestNormalizer()

	rec, err := n.Normalize(models.LiveFeedRow{
		FlightNumber:  "G3 1234",
		Airline:       "G3",
		Status:        "Atrasado",
		ScheduledTime: "22:00",
		ActualTime:    "22:50",
		Origin:        "",
		Destination:   "Santiago",
		CaptureDate:   "2025-03-10",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.AirlineName != "GOL" {
		t.Errorf("expected airline GOL, got %q", rec.AirlineName)
	}
	if rec.FlightNumber != "31234" {
		t.Errorf("expected flight number 31234, got %q", rec.FlightNumber)
	}
	if rec.Status != models.StatusDelayed {
		t.Errorf("expected delayed status, got %q", rec.Status)
	}
	if rec.DelayMinutes != 50 {
		t.Errorf("expected 50 minute delay, got %d", rec.DelayMinutes)
	}
	if rec.Origin != "GRU" {
		t.Errorf("expected GRU origin default, got %q", rec.Origin)
	}
	if rec.Destination != "Santiago" || rec.DestinationCode != "SCL" {
		t.Errorf("expected Santiago/SCL, got %q/%q", rec.Destination, rec.DestinationCode)
	}
	if rec.Source != models.SourceLiveFeed {
		t.Errorf("expected live feed source, got %q", rec.Source)
	}
	want := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	if !rec.ScheduledAt.Equal(want) {
		t.Errorf("expected scheduled %v, got %v", want, rec.ScheduledAt)
	}
}

func TestNormalizeLiveFeedEstimatedDelay(t *testing.T) {
	n := newTestNormalizer()

	rec, err := n.Normalize(models.LiveFeedRow{
		FlightNumber:  "2044",
		Airline:       "LATAM",
		Status:        "Atrasado",
		ScheduledTime: "08:15",
		DelayHours:    1.5,
		CaptureDate:   "2025-03-10",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.DelayMinutes != 90 {
		t.Errorf("expected estimated 90 minute delay, got %d", rec.DelayMinutes)
	}
}

func TestNormalizeLiveFeedInfersDelayFromTimestamps(t *testing.T) {
	n := newTestNormalizer()

	rec, err := n.Normalize(models.LiveFeedRow{
		FlightNumber:  "G3 1234",
		Airline:       "G3",
		ScheduledTime: "08:30",
		ActualTime:    "09:20",
		CaptureDate:   "2025-12-15",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != models.StatusDelayed {
		t.Errorf("late departure without status text must be delayed, got %q", rec.Status)
	}
	if rec.DelayMinutes != 50 {
		t.Errorf("expected 50 minute delay from timestamps, got %d", rec.DelayMinutes)
	}
}

func TestNormalizeLiveFeedMissingFields(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Normalize(models.LiveFeedRow{
		FlightNumber:  "",
		Airline:       "GOL",
		ScheduledTime: "10:00",
		CaptureDate:   "2025-03-10",
	})

	var rowErr *RowError
	if !errors.As(err, &rowErr) || rowErr.Reason != ReasonMissingField {
		t.Fatalf("expected missing field error, got %v", err)
	}
}

func TestNormalizeHistoricalDelayed(t *testing.T) {
	n := newTestNormalizer()

	rec, err := n.Normalize(models.HistoricalRow{Columns: map[string]string{
		"Sigla ICAO Empresa Aérea": "AD",
		"Número Voo":               "AD4050",
		"ICAO Aeródromo Origem":    "SBGR",
		"ICAO Aeródromo Destino":   "SBSV",
		"Partida Prevista":         "2025-03-10 22:00:00",
		"Partida Real":             "2025-03-10 23:30:00",
		"Situação Voo":             "REALIZADO",
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.AirlineName != "AZUL" {
		t.Errorf("expected AZUL, got %q", rec.AirlineName)
	}
	if rec.FlightNumber != "4050" {
		t.Errorf("expected flight number 4050, got %q", rec.FlightNumber)
	}
	if rec.Origin != "GRU" {
		t.Errorf("expected SBGR mapped to GRU, got %q", rec.Origin)
	}
	if rec.Status != models.StatusDelayed {
		t.Errorf("expected delayed, got %q", rec.Status)
	}
	if rec.DelayMinutes != 90 {
		t.Errorf("expected 90 minute delay, got %d", rec.DelayMinutes)
	}
	if rec.Source != models.SourceHistoricalImport {
		t.Errorf("expected historical source, got %q", rec.Source)
	}
}

func TestNormalizeHistoricalCancelled(t *testing.T) {
	n := newTestNormalizer()

	rec, err := n.Normalize(models.HistoricalRow{Columns: map[string]string{
		"Sigla ICAO Empresa Aérea": "LA",
		"Número Voo":               "8084",
		"ICAO Aeródromo Origem":    "SBGR",
		"Partida Prevista":         "2025-03-11 08:30:00",
		"Situação Voo":             "CANCELADO",
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != models.StatusCancelled {
		t.Errorf("expected cancelled, got %q", rec.Status)
	}
	if rec.DelayMinutes != 0 {
		t.Errorf("cancelled flight must have zero delay, got %d", rec.DelayMinutes)
	}
}

func TestNormalizeHistoricalOnTimeIsScheduled(t *testing.T) {
	n := newTestNormalizer()

	rec, err := n.Normalize(models.HistoricalRow{Columns: map[string]string{
		"Sigla ICAO Empresa Aérea": "LA",
		"Número Voo":               "3000",
		"ICAO Aeródromo Origem":    "SBGR",
		"Partida Prevista":         "2025-03-11 08:30:00",
		"Partida Real":             "2025-03-11 08:30:00",
		"Situação Voo":             "REALIZADO",
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != models.StatusScheduled {
		t.Errorf("expected scheduled for on-time departure, got %q", rec.Status)
	}
}

func TestNormalizeHistoricalBadDatetime(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Normalize(models.HistoricalRow{Columns: map[string]string{
		"Sigla ICAO Empresa Aérea": "LA",
		"Número Voo":               "3000",
		"Partida Prevista":         "not a date",
	}})

	var rowErr *RowError
	if !errors.As(err, &rowErr) || rowErr.Reason != ReasonBadDatetime {
		t.Fatalf("expected bad datetime error, got %v", err)
	}
}

type bogusRow struct{}

func (bogusRow) RowSource() models.Source { return "bogus" }

func TestNormalizeUnknownRowType(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Normalize(bogusRow{})
	var rowErr *RowError
	if !errors.As(err, &rowErr) || rowErr.Reason != ReasonUnknownRowType {
		t.Fatalf("expected unknown row type error, got %v", err)
	}
}

func TestNormalizeBatchIsolatesFailures(t *testing.T) {
	n := newTestNormalizer()

	rows := []models.RawRow{
		models.LiveFeedRow{FlightNumber: "100", Airline: "KLM", Status: "Atrasado", ScheduledTime: "10:00", CaptureDate: "2025-03-10"},
		models.LiveFeedRow{FlightNumber: "", Airline: "", ScheduledTime: "10:00", CaptureDate: "2025-03-10"},
		models.LiveFeedRow{FlightNumber: "200", Airline: "KLM", Status: "Cancelado", ScheduledTime: "11:00", CaptureDate: "2025-03-10"},
	}

	records, failures := n.NormalizeBatch(rows)
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
	if len(failures) != 1 {
		t.Errorf("expected 1 failure, got %d", len(failures))
	}
}

func TestCleanFlightNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"LA 3402", "3402"},
		{"AD4050", "4050"},
		{"  KL 0792 ", "792"},
		{"G3 1234", "31234"},
		{"0123", "123"},
		{"1234", "1234"},
	}
	for _, c := range cases {
		if got := CleanFlightNumber(c.in); got != c.want {
			t.Errorf("CleanFlightNumber(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFoldColumnName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Sigla ICAO Empresa Aérea", "sigla_icao_empresa_aerea"},
		{"Número Voo", "numero_voo"},
		{"Partida Prevista", "partida_prevista"},
		{"  Situação Voo  ", "situacao_voo"},
		{"ICAO Aeródromo Origem", "icao_aerodromo_origem"},
	}
	for _, c := range cases {
		if got := FoldColumnName(c.in); got != c.want {
			t.Errorf("FoldColumnName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
