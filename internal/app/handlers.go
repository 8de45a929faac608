package app

import (
	apphttp "github.com/yungbote/megamarket-backend/internal/http"
	httpH "github.com/yungbote/megamarket-backend/internal/http/handlers"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Import *httpH.ImportHandler
	Node   *httpH.NodeHandler
	Sales  *httpH.SalesHandler
}

func wireHandlers(log *logger.Logger, services Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Import: httpH.NewImportHandler(services.Import),
		Node:   httpH.NewNodeHandler(services.Node),
		Sales:  httpH.NewSalesHandler(services.Sales),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers) *apphttp.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(apphttp.ServerConfig{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Std(),
		ReadTimeout:       cfg.HTTP.ReadTimeout.Std(),
		WriteTimeout:      cfg.HTTP.WriteTimeout.Std(),
	}, apphttp.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Metrics:        cfg.HTTP.Metrics,
		HealthHandler:  handlers.Health,
		ImportHandler:  handlers.Import,
		NodeHandler:    handlers.Node,
		SalesHandler:   handlers.Sales,
	})
}
