package providers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/time/rate"

	"github.com/jonechelon/matchfly-pseo/internal/common"
	"github.com/jonechelon/matchfly-pseo/internal/constants"
	"github.com/jonechelon/matchfly-pseo/internal/logging"
	"github.com/jonechelon/matchfly-pseo/internal/models"
	"github.com/jonechelon/matchfly-pseo/internal/normalize"
)

const defaultRegistryBaseURL = "https://siros.anac.gov.br/siros/registros/registros/serie"

// HistoricalProvider downloads the regulator's daily CSV exports and yields
// the rows departing from Guarulhos. One file per day; recent days may not be
// published yet, which is not an error.
type HistoricalProvider struct {
	baseURL     string
	days        int
	airportICAO string
	cache       common.CacheInterface
	client      *http.Client
	limiter     *rate.Limiter
	now         func() time.Time
}

var _ RowProvider = (*HistoricalProvider)(nil)

func NewHistoricalProvider(baseURL string, days int, cache common.CacheInterface) *HistoricalProvider {
	if baseURL == "" {
		baseURL = defaultRegistryBaseURL
	}
	if days <= 0 {
		days = 30
	}
	return &HistoricalProvider{
		baseURL:     baseURL,
		days:        days,
		airportICAO: "SBGR",
		cache:       cache,
		client:      &http.Client{Timeout: 60 * time.Second},
		// The registry is a public government server; one download every
		// 1.5s keeps us well under its tolerance.
		limiter: rate.NewLimiter(rate.Every(1500*time.Millisecond), 1),
		now:     time.Now,
	}
}

// GetProviderType returns the provider type identifier
func (p *HistoricalProvider) GetProviderType() string {
	return "anac_siros_daily"
}

// FetchRows walks the last N days from most recent to oldest. Missing days
// and broken downloads are skipped; only a fully unreachable registry is
// worth surfacing, and even that comes back as rows plus a warning because a
// backfill gap must not abort the run.
func (p *HistoricalProvider) FetchRows(ctx context.Context) ([]models.RawRow, error) {
	var rows []models.RawRow
	var fetched, missing, failed int

	for i := 1; i <= p.days; i++ {
		day := p.now().AddDate(0, 0, -i).Format("2006-01-02")
		url := fmt.Sprintf("%s/%s/registros_%s.csv", p.baseURL, day[:4], day)

		body, err := p.download(ctx, url)
		if err != nil {
			var perr *ProviderError
			if e, ok := err.(*ProviderError); ok {
				perr = e
			}
			if perr != nil && perr.Code == constants.ErrCodeNotPublishedYet {
				missing++
				continue
			}
			logging.Warn("daily export download failed", "date", day, "error", err.Error())
			failed++
			continue
		}
		fetched++

		batch, err := parseDailyExport(body)
		if err != nil {
			logging.Warn("daily export unparseable", "date", day, "error", err.Error())
			failed++
			continue
		}
		rows = append(rows, p.filterAirport(batch)...)
	}

	logging.Info("historical import fetched",
		"days", p.days, "downloaded", fetched, "unpublished", missing, "failed", failed, "rows", len(rows))
	return rows, nil
}

// download fetches one daily file, going through the cache so reruns inside
// the TTL don't hit the registry again.
func (p *HistoricalProvider) download(ctx context.Context, url string) (string, error) {
	val, err := p.cache.GetOrSet(url, 12*time.Hour, func() (any, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, &ProviderError{Code: constants.ErrCodeNetworkError, Message: "download failed", Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, &ProviderError{Code: constants.ErrCodeNotPublishedYet, Message: url}
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &ProviderError{Code: constants.ErrCodeRateLimited, Message: url}
		case resp.StatusCode != http.StatusOK:
			return nil, &ProviderError{Code: constants.ErrCodeNetworkError,
				Message: fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, url)}
		}

		decoded, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(resp.Body))
		if err != nil {
			return nil, &ProviderError{Code: constants.ErrCodeDecodingFailed, Message: url, Err: err}
		}
		return string(decoded), nil
	})
	if err != nil {
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", &ProviderError{Code: constants.ErrCodeInvalidDataFormat, Message: "unexpected cache value type"}
	}
	return s, nil
}

// parseDailyExport reads the semicolon-separated export into header→value
// rows. Header interpretation is left to the normalizer.
func parseDailyExport(content string) ([]models.HistoricalRow, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.Comma = ';'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("export has no header: %w", err)
	}

	var rows []models.HistoricalRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		columns := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				columns[strings.TrimSpace(h)] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, models.HistoricalRow{Columns: columns})
	}
	return rows, nil
}

// filterAirport keeps rows departing from the configured airport. The origin
// column is found by the same synonym folding the normalizer uses.
func (p *HistoricalProvider) filterAirport(batch []models.HistoricalRow) []models.RawRow {
	out := make([]models.RawRow, 0, len(batch))
	for _, row := range batch {
		for header, value := range row.Columns {
			folded := normalize.FoldColumnName(header)
			if !strings.Contains(folded, "origem") && !strings.Contains(folded, "origin") {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(value), p.airportICAO) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
