package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/sealant-catalog-backend/internal/data/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/observability"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
	"github.com/yungbote/sealant-catalog-backend/internal/services"
)

type Services struct {
	Audit    services.AuditService
	Backup   services.BackupService
	Product  services.ProductService
	Notifier services.CatalogNotifier
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	notifier := services.NewNoopCatalogNotifier()
	if clients.EventBus != nil {
		notifier = services.NewCatalogNotifier(clients.EventBus, log, metrics)
	}

	auditService := services.NewAuditService(log, reposet.Audit, cfg.AuditPageLimit)

	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
	}
	promotionDeps := aggregates.PromotionAggregateDeps{
		Base:     base,
		Products: reposet.Product,
		Backups:  reposet.Backup,
		Audit:    auditService,
	}
	if clients.Redis != nil {
		promotionDeps.Distributed = aggregates.NewRedisLock(clients.Redis, aggregates.PromotionLockKey, cfg.PromotionLockTTL, log)
	}

	backupService := services.NewBackupService(log, services.BackupServiceDeps{
		Backups: reposet.Backup,
		Lifecycle: aggregates.NewBackupAggregate(aggregates.BackupAggregateDeps{
			Base:     base,
			Products: reposet.Product,
			Backups:  reposet.Backup,
			Audit:    auditService,
		}),
		Promotion:    aggregates.NewPromotionAggregate(promotionDeps),
		Notifier:     notifier,
		Metrics:      metrics,
		PreviewLimit: cfg.PreviewLimit,
	})

	return Services{
		Audit:    auditService,
		Backup:   backupService,
		Product:  services.NewProductService(db, log, reposet.Product, auditService, notifier),
		Notifier: notifier,
	}
}
