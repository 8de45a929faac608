package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLitePath strips the sqlite:/// scheme: sqlite:///x.db is the relative
// path x.db, sqlite:////var/x.db the absolute /var/x.db.
func SQLitePath(url string) string {
	p := strings.TrimSpace(url)
	if strings.HasPrefix(strings.ToLower(p), "sqlite://") {
		p = strings.TrimPrefix(p[len("sqlite://"):], "/")
	}
	return p
}

// sqliteDSN enables foreign keys on every pooled connection; cascading
// deletes depend on it.
func sqliteDSN(url string) string {
	path := SQLitePath(url)
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
}

func openSQLite(url string, cfg *gorm.Config) (*gorm.DB, error) {
	if SQLitePath(url) == "" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}
	conn, err := gorm.Open(sqlite.Open(sqliteDSN(url)), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	return conn, nil
}
