package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

type Config struct {
	// URL selects the engine: postgres:// and postgresql:// open PostgreSQL,
	// sqlite:// (or a bare file path) opens SQLite.
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

type Engine string

const (
	EnginePostgres Engine = "postgres"
	EngineSQLite   Engine = "sqlite"
)

// EngineOf classifies a database URL.
func EngineOf(url string) Engine {
	u := strings.ToLower(strings.TrimSpace(url))
	if strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://") {
		return EnginePostgres
	}
	return EngineSQLite
}

// Open connects to the configured database and applies pool limits.
func Open(cfg Config, log *logger.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         newGormLogger(log, cfg.SlowThreshold),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch EngineOf(cfg.URL) {
	case EnginePostgres:
		conn, err = openPostgres(cfg.URL, gcfg)
	default:
		conn, err = openSQLite(cfg.URL, gcfg)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if log != nil {
		log.Info("database connected", "engine", string(EngineOf(cfg.URL)), "database_url", cfg.URL)
	}
	return conn, nil
}

// Close releases the pool behind conn.
func Close(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type zapWriter struct {
	log *logger.Logger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func newGormLogger(log *logger.Logger, slow time.Duration) gormLogger.Interface {
	if log == nil {
		return gormLogger.Default.LogMode(gormLogger.Silent)
	}
	if slow <= 0 {
		slow = time.Second
	}
	return gormLogger.New(zapWriter{log: log.With("component", "gorm")}, gormLogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  gormLogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
