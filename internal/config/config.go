package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jonechelon/matchfly-pseo/internal/models"
)

// Settings is the configuration surface consumed by the pipeline. Values come
// from environment variables, with an optional .env file loaded first.
type Settings struct {
	AppEnv string

	// Monetization link injected into every rendered page. Required: the
	// renderer refuses to run without it.
	AffiliateLink string

	// Site identity.
	BaseURL    string
	SiteDomain string

	// Filesystem layout.
	DataFile   string
	OutputDir  string
	FlightDir  string
	ArchiveDir string

	// Source inputs.
	CaptureDir        string
	HistoricalBaseURL string
	HistoricalDays    int

	// Eligibility and aggregation.
	MinDelayMinutes int
	HomepageSize    int

	// Orphan handling for artifacts not regenerated this run.
	OrphanPolicy models.OrphanPolicy

	// Render worker pool size.
	RenderWorkers int

	// Store backend: "json" (default), "sqlite" or "postgres".
	StoreBackend string
	StoreDSN     string

	// Optional postgres DSN for persisting run history. Empty keeps run
	// history in memory only.
	RunHistoryDSN string

	// Cache backend: "memory" (default) or "redis".
	CacheBackend string

	PreviewAddr string

	// Indexing API credentials file; empty disables index submission.
	IndexCredentialsFile string
}

// Load reads settings from the environment. A missing .env file is fine; the
// environment itself is authoritative.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		AppEnv:               getEnv("APP_ENV", "development"),
		AffiliateLink:        strings.TrimSpace(os.Getenv("AFFILIATE_LINK")),
		BaseURL:              strings.TrimRight(getEnv("BASE_URL", "https://matchfly.org"), "/"),
		SiteDomain:           getEnv("SITE_DOMAIN", "matchfly.org"),
		DataFile:             getEnv("DATA_FILE", "data/flights-db.json"),
		OutputDir:            getEnv("OUTPUT_DIR", "public"),
		FlightDir:            getEnv("FLIGHT_DIR", "public/voo"),
		ArchiveDir:           getEnv("ARCHIVE_DIR", "public/arquivo"),
		CaptureDir:           getEnv("CAPTURE_DIR", "data/capturas"),
		HistoricalBaseURL:    os.Getenv("HISTORICAL_BASE_URL"),
		StoreBackend:         getEnv("STORE_BACKEND", "json"),
		StoreDSN:             os.Getenv("STORE_DSN"),
		RunHistoryDSN:        os.Getenv("RUN_HISTORY_DSN"),
		CacheBackend:         getEnv("CACHE_BACKEND", "memory"),
		PreviewAddr:          getEnv("PREVIEW_ADDR", ":8080"),
		IndexCredentialsFile: os.Getenv("INDEX_CREDENTIALS_FILE"),
	}

	var err error
	if s.MinDelayMinutes, err = getEnvInt("MIN_DELAY_MINUTES", 15); err != nil {
		return nil, err
	}
	if s.HomepageSize, err = getEnvInt("HOMEPAGE_SIZE", 60); err != nil {
		return nil, err
	}
	if s.RenderWorkers, err = getEnvInt("RENDER_WORKERS", 4); err != nil {
		return nil, err
	}
	if s.HistoricalDays, err = getEnvInt("HISTORICAL_DAYS", 30); err != nil {
		return nil, err
	}

	policy := models.OrphanPolicy(getEnv("ORPHAN_POLICY", string(models.OrphanPreserve)))
	switch policy {
	case models.OrphanDelete, models.OrphanPreserve, models.OrphanArchive:
		s.OrphanPolicy = policy
	default:
		return nil, fmt.Errorf("invalid ORPHAN_POLICY %q (want delete, preserve or archive)", policy)
	}

	return s, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
