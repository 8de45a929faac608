package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/megamarket-backend/internal/data/db"
	apphttp "github.com/yungbote/megamarket-backend/internal/http"
	"github.com/yungbote/megamarket-backend/internal/observability"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
}

// New opens every process-wide handle. Close releases them.
func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: cfg.Otel.ServiceName,
		Environment: cfg.Otel.Environment,
		Endpoint:    cfg.Otel.Endpoint,
		Headers:     observability.ParseHeaders(cfg.Otel.Headers),
		Insecure:    cfg.Otel.Insecure,
		SampleRatio: cfg.Otel.SampleRatio,
		Stdout:      cfg.Otel.Stdout,
	})

	log.Info("Connecting to database...", "database_url", cfg.Database.URL, "engine", db.EngineOf(cfg.Database.URL))
	conn, err := db.Open(db.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime.Std(),
		SlowThreshold:   cfg.Database.SlowThreshold.Std(),
	}, log)
	if err != nil {
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		_ = db.Close(conn)
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("database handle: %w", err)
	}

	reposet := wireRepos(conn, log, cfg.Tree)
	serviceset := wireServices(conn, log, cfg, reposet)
	handlerset := wireHandlers(log, serviceset, sqlDB)
	server := wireServer(log, cfg, handlerset)

	return &App{
		Log:          log,
		DB:           conn,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Migrate(ctx context.Context) error {
	if a == nil || a.DB == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Migrating schema...")
	if err := db.AutoMigrateAll(ctx, a.DB); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Cfg.Database.AutoMigrate {
		if err := a.Migrate(ctx); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Server.Addr())
		return a.Server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := a.Cfg.ShutdownTimeout.Std()
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		a.Log.Info("Shutting down HTTP server...", "timeout", timeout.String())
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return a.Server.Shutdown(sctx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	if a.DB != nil {
		if err := db.Close(a.DB); err != nil && a.Log != nil {
			a.Log.Warn("database close failed", "error", err)
		}
		a.DB = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
