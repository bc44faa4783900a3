package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonechelon/matchfly-pseo/internal/models"
)

func writeCapture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLiveFeedReadsJSONArray(t *testing.T) {
	dir := t.TempDir()
	writeCapture(t, dir, "captura_2025-03-10.json", `[
		{"flight_number": "G3 1234", "airline": "GOL", "status": "Atrasado", "scheduled_time": "22:00", "delay_hours": 0.8, "origin": "GRU", "capture_date": "2025-03-10"},
		{"flight_number": "AD 4050", "airline": "AZUL", "status": "Programado", "scheduled_time": "23:10", "origin": "GRU", "capture_date": "2025-03-10"}
	]`)

	rows, err := NewLiveFeedProvider(dir).FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first, ok := rows[0].(models.LiveFeedRow)
	require.True(t, ok)
	require.Equal(t, "GOL", first.Airline)
	require.Equal(t, "G3 1234", first.FlightNumber)
}

func TestLiveFeedReadsWrappedDocument(t *testing.T) {
	dir := t.TempDir()
	writeCapture(t, dir, "captura.json", `{
		"captured_at": "2025-03-10T22:50:00Z",
		"flights": [
			{"flight_number": "KL 792", "airline": "KLM", "status": "Cancelado", "scheduled_time": "10:00", "origin": "GRU", "capture_date": "2025-03-10"}
		]
	}`)

	rows, err := NewLiveFeedProvider(dir).FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestLiveFeedFiltersPlaceholderAirlines(t *testing.T) {
	dir := t.TempDir()
	writeCapture(t, dir, "captura.json", `[
		{"flight_number": "1234", "airline": "GOL", "status": "Atrasado", "scheduled_time": "22:00", "origin": "GRU", "capture_date": "2025-03-10"},
		{"flight_number": "9999", "airline": "N/A", "status": "Atrasado", "scheduled_time": "22:00", "origin": "GRU", "capture_date": "2025-03-10"},
		{"flight_number": "8888", "airline": "  ", "status": "Atrasado", "scheduled_time": "22:00", "origin": "GRU", "capture_date": "2025-03-10"}
	]`)

	rows, err := NewLiveFeedProvider(dir).FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestLiveFeedReadsLegacyCSV(t *testing.T) {
	dir := t.TempDir()
	writeCapture(t, dir, "captura_2024-11-02.csv",
		"Data_Captura,Horario,Companhia,Numero_Voo,Status,Operado_Por,Destino_Origem,Hora_Partida\n"+
			"2024-11-02,21:55,GOL,G3 1234,Atrasado,,Santiago,22:00\n"+
			"2024-11-02,21:55,AIR FRANCE,AF 459,Programado,,KLM,23:30\n"+
			"2024-11-02,21:55,N/A,XX 1,Atrasado,,,,\n")

	rows, err := NewLiveFeedProvider(dir).FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first, ok := rows[0].(models.LiveFeedRow)
	require.True(t, ok)
	require.Equal(t, "GOL", first.Airline)
	require.Equal(t, "22:00", first.ScheduledTime)
	require.Equal(t, "GRU", first.Origin)
	require.InDelta(t, 1.0, first.DelayHours, 0.001, "delayed status implies a default delay")
	require.Empty(t, first.OperatedBy, "destination city must not be read as a codeshare carrier")

	second, ok := rows[1].(models.LiveFeedRow)
	require.True(t, ok)
	require.Equal(t, "KLM", second.OperatedBy, "known carrier in the destination column is the operator")
	require.Zero(t, second.DelayHours)
}

func TestLiveFeedSkipsUnreadableCapture(t *testing.T) {
	dir := t.TempDir()
	writeCapture(t, dir, "a_bad.json", `{not json`)
	writeCapture(t, dir, "b_good.json", `[
		{"flight_number": "1234", "airline": "GOL", "status": "Atrasado", "scheduled_time": "22:00", "origin": "GRU", "capture_date": "2025-03-10"}
	]`)

	rows, err := NewLiveFeedProvider(dir).FetchRows(context.Background())
	require.NoError(t, err, "one broken capture must not fail the feed")
	require.Len(t, rows, 1)
}

func TestLiveFeedMissingDirectoryIsEmpty(t *testing.T) {
	rows, err := NewLiveFeedProvider(filepath.Join(t.TempDir(), "absent")).FetchRows(context.Background())
	require.NoError(t, err)
	require.Empty(t, rows)
}
