package providers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonechelon/matchfly-pseo/internal/constants"
	"github.com/jonechelon/matchfly-pseo/internal/logging"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

// Airlines that show up in the codeshare column of scraper captures. A value
// from this set names the operating carrier, not a destination.
var knownCarriers = map[string]bool{
	"LATAM": true, "TAM": true, "GOL": true, "AZUL": true,
	"EMIRATES": true, "TURKISH": true, "TURKISH AIRLINES": true,
	"BRITISH": true, "BRITISH AIRWAYS": true, "AIR FRANCE": true,
	"AIRFRANCE": true, "KLM": true, "LUFTHANSA": true,
	"AMERICAN": true, "AMERICAN AIRLINES": true, "DELTA": true, "UNITED": true,
}

// LiveFeedProvider reads departure-board captures produced by the scraper.
// JSON captures are the current format; CSV captures from older scraper
// versions are still accepted.
type LiveFeedProvider struct {
	dir string
}

var _ RowProvider = (*LiveFeedProvider)(nil)

func NewLiveFeedProvider(dir string) *LiveFeedProvider {
	return &LiveFeedProvider{dir: dir}
}

// GetProviderType returns the provider type identifier
func (p *LiveFeedProvider) GetProviderType() string {
	return "live_feed_captures"
}

// FetchRows loads every capture file under the provider directory, oldest
// first. A single unreadable capture is logged and skipped.
func (p *LiveFeedProvider) FetchRows(_ context.Context) ([]models.RawRow, error) {
	entries, err := os.ReadDir(p.dir)
	if os.IsNotExist(err) {
		logging.Info("no capture directory, live feed empty", "dir", p.dir)
		return nil, nil
	}
	if err != nil {
		return nil, &ProviderError{Code: constants.ErrCodeFileNotFound, Message: "cannot read capture directory", Err: err}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".json" || ext == ".csv" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var rows []models.RawRow
	for _, name := range names {
		path := filepath.Join(p.dir, name)
		var (
			batch []models.RawRow
			err   error
		)
		if filepath.Ext(name) == ".json" {
			batch, err = p.readJSONCapture(path)
		} else {
			batch, err = p.readCSVCapture(path)
		}
		if err != nil {
			logging.Warn("skipping unreadable capture", "file", name, "error", err.Error())
			continue
		}
		rows = append(rows, batch...)
	}

	logging.Info("live feed loaded", "captures", len(names), "rows", len(rows))
	return rows, nil
}

func (p *LiveFeedProvider) readJSONCapture(path string) ([]models.RawRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var flights []models.LiveFeedRow
	if err := json.Unmarshal(data, &flights); err != nil {
		// Captures may wrap the list in a document with metadata.
		var doc struct {
			Flights []models.LiveFeedRow `json:"flights"`
		}
		if err2 := json.Unmarshal(data, &doc); err2 != nil {
			return nil, &ProviderError{Code: constants.ErrCodeInvalidDataFormat, Message: "unparseable capture", Err: err}
		}
		flights = doc.Flights
	}

	rows := make([]models.RawRow, 0, len(flights))
	for _, f := range flights {
		if strings.TrimSpace(f.Airline) == "" || strings.EqualFold(f.Airline, "N/A") {
			continue
		}
		rows = append(rows, f)
	}
	return rows, nil
}

// readCSVCapture converts the legacy scraper CSV schema into live-feed rows.
func (p *LiveFeedProvider) readCSVCapture(path string) ([]models.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, &ProviderError{Code: constants.ErrCodeInvalidDataFormat, Message: "capture csv has no header", Err: err}
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []models.RawRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		airline := field(rec, "Companhia")
		if airline == "" || strings.EqualFold(airline, "N/A") {
			continue
		}

		operatedBy := field(rec, "Operado_Por")
		if operatedBy == "" {
			if v := field(rec, "Destino_Origem"); knownCarriers[strings.ToUpper(v)] {
				operatedBy = v
			}
		}
		if strings.EqualFold(operatedBy, airline) || strings.EqualFold(operatedBy, "N/A") {
			operatedBy = ""
		}

		scheduled := field(rec, "Hora_Partida")
		if scheduled == "" {
			scheduled = field(rec, "Horario")
		}

		var delayHours float64
		if strings.Contains(strings.ToLower(field(rec, "Status")), "atrasado") {
			delayHours = 1.0
		}

		rows = append(rows, models.LiveFeedRow{
			FlightNumber:  field(rec, "Numero_Voo"),
			Airline:       airline,
			OperatedBy:    operatedBy,
			Status:        field(rec, "Status"),
			ScheduledTime: scheduled,
			DelayHours:    delayHours,
			Origin:        "GRU",
			CaptureDate:   field(rec, "Data_Captura"),
		})
	}
	return rows, nil
}
