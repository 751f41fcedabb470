package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/sealant-catalog-backend/internal/data/repos"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

type Repos struct {
	Product repos.ProductRepo
	Backup  repos.BackupRepo
	Audit   repos.AuditLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Product: repos.NewProductRepo(db, log),
		Backup:  repos.NewBackupRepo(db, log),
		Audit:   repos.NewAuditLogRepo(db, log),
	}
}
