package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/megamarket-backend/internal/http/handlers"
	httpMW "github.com/yungbote/megamarket-backend/internal/http/middleware"
	"github.com/yungbote/megamarket-backend/internal/observability"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        bool

	ImportHandler *httpH.ImportHandler
	NodeHandler   *httpH.NodeHandler
	SalesHandler  *httpH.SalesHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	if cfg.Metrics {
		r.Use(httpMW.Metrics())
	}
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics {
		r.GET("/metrics", gin.WrapH(observability.Handler()))
	}

	// Imports
	if cfg.ImportHandler != nil {
		r.POST("/imports", cfg.ImportHandler.Import)
	}

	// Nodes
	if cfg.NodeHandler != nil {
		r.GET("/nodes/:id", cfg.NodeHandler.GetNode)
		r.DELETE("/delete/:id", cfg.NodeHandler.Delete)
		r.GET("/delete", cfg.NodeHandler.Delete)
	}

	// Sales
	if cfg.SalesHandler != nil {
		r.GET("/sales", cfg.SalesHandler.ListSales)
	}

	return r
}
