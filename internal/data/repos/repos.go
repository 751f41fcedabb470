package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/sealant-catalog-backend/internal/data/repos/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/data/repos/backup"
	"github.com/yungbote/sealant-catalog-backend/internal/data/repos/catalog"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

type ProductRepo = catalog.ProductRepo
type BackupRepo = backup.BackupRepo
type AuditLogRepo = audit.AuditLogRepo

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}

func NewBackupRepo(db *gorm.DB, baseLog *logger.Logger) BackupRepo {
	return backup.NewBackupRepo(db, baseLog)
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return audit.NewAuditLogRepo(db, baseLog)
}
