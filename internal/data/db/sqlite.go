package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultSQLitePath = "catalog.db"

// SQLiteDSN builds a DSN with a busy timeout so writers queue on the database
// lock instead of failing immediately.
func SQLiteDSN(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultSQLitePath
	}
	if strings.Contains(path, "?") {
		return path
	}
	return "file:" + path + "?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL"
}

func openSQLite(cfg Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(SQLiteDSN(cfg.SQLitePath)), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// One writer at a time; a second connection would only add SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	return gdb, nil
}
