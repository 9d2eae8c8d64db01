package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-review-api/internal/database"
)

// Storage drivers understood by Open.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLiteFile is the database file created inside the data directory by the sqlite driver.
const SQLiteFile = "review.db"

// StorageConfig selects and locates the record stores.
type StorageConfig struct {
	Driver      string
	DataDir     string
	DatabaseURL string
}

// Open builds the repositories for the configured driver. The returned closer releases
// any database handle and is never nil.
func Open(cfg StorageConfig) (Repositories, func() error, error) {
	noopClose := func() error { return nil }

	switch cfg.Driver {
	case DriverCSV, "":
		repos, err := NewCSVRepositories(cfg.DataDir)
		return repos, noopClose, err
	case DriverSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return Repositories{}, noopClose, fmt.Errorf("create data dir: %w", err)
		}
		db, err := database.ConnectSQLite(filepath.Join(cfg.DataDir, SQLiteFile))
		if err != nil {
			return Repositories{}, noopClose, err
		}
		return openGorm(db)
	case DriverPostgres:
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return Repositories{}, noopClose, err
		}
		return openGorm(db)
	default:
		return Repositories{}, noopClose, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openGorm(db *gorm.DB) (Repositories, func() error, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return Repositories{}, func() error { return nil }, err
	}
	if err := database.Migrate(db); err != nil {
		_ = sqlDB.Close()
		return Repositories{}, func() error { return nil }, err
	}
	return NewGormRepositories(db), sqlDB.Close, nil
}
