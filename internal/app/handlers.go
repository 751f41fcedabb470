package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/sealant-catalog-backend/internal/http"
	httpH "github.com/yungbote/sealant-catalog-backend/internal/http/handlers"
	"github.com/yungbote/sealant-catalog-backend/internal/observability"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Backup  *httpH.BackupHandler
	Audit   *httpH.AuditHandler
	Product *httpH.ProductHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(db),
		Backup:  httpH.NewBackupHandler(log, services.Backup),
		Audit:   httpH.NewAuditHandler(services.Audit),
		Product: httpH.NewProductHandler(services.Product),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	return http.NewServer(":"+cfg.Port, http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.Otel.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		BackupHandler:  handlers.Backup,
		AuditHandler:   handlers.Audit,
		ProductHandler: handlers.Product,
		HealthHandler:  handlers.Health,
	})
}
