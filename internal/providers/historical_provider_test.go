package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jonechelon/matchfly-pseo/internal/common"
	"github.com/jonechelon/matchfly-pseo/internal/constants"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

const dailyExportCSV = "Sigla Empresa;Número Voo;Origem;Destino;Partida Prevista;Partida Real;Situação\n" +
	"G3;1234;SBGR;SCEL;10/03/2025 22:00;10/03/2025 22:50;REALIZADO COM ATRASO\n" +
	"AD;4050;SBKP;SBGR;10/03/2025 21:00;10/03/2025 21:00;REALIZADO\n" +
	"KL;792;SBGR;EHAM;10/03/2025 10:00;;CANCELADO\n"

func newTestHistoricalProvider(baseURL string, days int) *HistoricalProvider {
	p := NewHistoricalProvider(baseURL, days, common.NewCacheService(60, 30))
	p.limiter = rate.NewLimiter(rate.Inf, 1)
	p.now = func() time.Time { return time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC) }
	return p
}

func TestHistoricalFetchFiltersOrigin(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if r.URL.Path == "/2025/registros_2025-03-10.csv" {
			w.Write([]byte(dailyExportCSV))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := newTestHistoricalProvider(srv.URL, 3)
	rows, err := p.FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, requested, 3)

	// Only the two SBGR departures survive the origin filter.
	require.Len(t, rows, 2)
	for _, raw := range rows {
		row, ok := raw.(models.HistoricalRow)
		require.True(t, ok)
		require.Equal(t, "SBGR", row.Columns["Origem"])
	}
}

func TestHistoricalUnpublishedDaysAreSkipped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := newTestHistoricalProvider(srv.URL, 5)
	rows, err := p.FetchRows(context.Background())
	require.NoError(t, err, "unpublished days are routine, not a failure")
	require.Empty(t, rows)
}

func TestHistoricalServerErrorsDoNotAbortRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newTestHistoricalProvider(srv.URL, 2)
	rows, err := p.FetchRows(context.Background())
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestHistoricalDownloadsGoThroughCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(dailyExportCSV))
	}))
	defer srv.Close()

	p := newTestHistoricalProvider(srv.URL, 1)
	_, err := p.FetchRows(context.Background())
	require.NoError(t, err)
	_, err = p.FetchRows(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, hits, "rerun within the cache TTL must not hit the registry again")
}

func TestHistoricalNotPublishedErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := newTestHistoricalProvider(srv.URL, 1)
	_, err := p.download(context.Background(), srv.URL+"/2025/registros_2025-03-10.csv")

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, constants.ErrCodeNotPublishedYet, perr.Code)
}

func TestParseDailyExport(t *testing.T) {
	rows, err := parseDailyExport(dailyExportCSV)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "1234", rows[0].Columns["Número Voo"])
	require.Equal(t, "CANCELADO", rows[2].Columns["Situação"])
}
