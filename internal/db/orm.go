package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gormModels "github.com/jonechelon/matchfly-pseo/internal/models/gorm"
)

var ORM *gorm.DB

// InitORM opens a GORM connection for the database-backed canonical store.
// The sqlite backend is what local runs and tests use; postgres is for
// deployments that share one store between machines.
func InitORM(backend, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch backend {
	case "sqlite":
		if dsn == "" {
			dsn = "data/flights.db"
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("postgres store requires STORE_DSN")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s store: %w", backend, err)
	}

	if err := conn.AutoMigrate(&gormModels.FlightRecordRow{}, &gormModels.StoreMetadataRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate store schema: %w", err)
	}

	ORM = conn
	return conn, nil
}
