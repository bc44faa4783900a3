package cli

import (
	"context"
	"fmt"

	"github.com/jonechelon/matchfly-pseo/internal/common"
	"github.com/jonechelon/matchfly-pseo/internal/config"
	"github.com/jonechelon/matchfly-pseo/internal/db"
	"github.com/jonechelon/matchfly-pseo/internal/db/repositories"
	"github.com/jonechelon/matchfly-pseo/internal/indexer"
	"github.com/jonechelon/matchfly-pseo/internal/logging"
	"github.com/jonechelon/matchfly-pseo/internal/metrics"
	"github.com/jonechelon/matchfly-pseo/internal/pipeline"
	"github.com/jonechelon/matchfly-pseo/internal/store"
)

// Runtime bundles the wired-up dependencies a command needs.
type Runtime struct {
	Cfg         *config.Settings
	Store       store.Store
	Cache       common.CacheInterface
	IndexClient *indexer.Client
	Pipeline    *pipeline.Pipeline
}

// NewRuntime loads configuration and wires the pipeline. Fatal configuration
// problems surface here, before any command does work.
func NewRuntime(ctx context.Context) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	var historyRepo *repositories.RunHistoryRepo
	if cfg.RunHistoryDSN != "" {
		if err := db.InitPostgres(cfg.RunHistoryDSN); err != nil {
			logging.Warn("run history database unavailable", "error", err.Error())
		} else {
			historyRepo = repositories.NewRunHistoryRepo(db.DB)
			if err := historyRepo.EnsureSchema(ctx); err != nil {
				logging.Warn("failed to prepare run history schema", "error", err.Error())
				historyRepo = nil
			}
		}
	}

	indexClient, err := indexer.NewClient(cfg.IndexCredentialsFile)
	if err != nil {
		return nil, err
	}

	pipe, err := pipeline.New(cfg, st, historyRepo, indexClient, metrics.NewMetricsRegistry())
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Cfg:         cfg,
		Store:       st,
		Cache:       common.NewCache(cfg.CacheBackend),
		IndexClient: indexClient,
		Pipeline:    pipe,
	}, nil
}

func openStore(cfg *config.Settings) (store.Store, error) {
	switch cfg.StoreBackend {
	case "json":
		return store.NewJSONStore(cfg.DataFile), nil
	case "sqlite", "postgres":
		conn, err := db.InitORM(cfg.StoreBackend, cfg.StoreDSN)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(conn), nil
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND: %s", cfg.StoreBackend)
	}
}
