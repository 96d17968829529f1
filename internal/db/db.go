package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/crucial707/picopico/internal/config"
)

// Connect opens the configured store and verifies it answers a ping.
// For SQLite the parent directory of the file is created when missing.
func Connect(cfg config.Config) (*sql.DB, error) {
	if cfg.DBDriver == config.DriverSQLite {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}

	if cfg.DBDriver == config.DriverSQLite {
		// One writer keeps SQLite from returning SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
