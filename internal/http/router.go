package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/sealant-catalog-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sealant-catalog-backend/internal/http/middleware"
	"github.com/yungbote/sealant-catalog-backend/internal/observability"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	BackupHandler  *httpH.BackupHandler
	AuditHandler   *httpH.AuditHandler
	ProductHandler *httpH.ProductHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = observability.DefaultServiceName
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Backups
		if cfg.BackupHandler != nil {
			api.GET("/backups", cfg.BackupHandler.List)
			api.POST("/backups", cfg.BackupHandler.Create)
			api.GET("/backups/:id", cfg.BackupHandler.Get)
			api.DELETE("/backups/:id", cfg.BackupHandler.Delete)
			api.GET("/backups/:id/preview", cfg.BackupHandler.Preview)
			api.POST("/backups/:id/promote", cfg.BackupHandler.Promote)
			api.POST("/backups/:id/archive", cfg.BackupHandler.Archive)
		}

		// Audit
		if cfg.AuditHandler != nil {
			api.GET("/audit-logs", cfg.AuditHandler.List)
			api.GET("/audit-logs/:id", cfg.AuditHandler.Get)
		}

		// Products
		if cfg.ProductHandler != nil {
			api.GET("/products", cfg.ProductHandler.List)
			api.POST("/products", cfg.ProductHandler.Create)
			api.GET("/products/:product_id", cfg.ProductHandler.Get)
			api.PUT("/products/:product_id", cfg.ProductHandler.Update)
			api.DELETE("/products/:product_id", cfg.ProductHandler.Delete)
		}
	}

	return r
}
