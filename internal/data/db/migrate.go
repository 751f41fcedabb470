package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/backup"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/catalog"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// Live catalog
		&catalog.Product{},

		// Snapshots
		&backup.Backup{},

		// Append-only audit trail
		&audit.AuditLog{},
	); err != nil {
		return err
	}
	return EnsureCatalogIndexes(db)
}

func EnsureCatalogIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_catalog_backup_created_id",
			sql:  `CREATE INDEX IF NOT EXISTS idx_catalog_backup_created_id ON catalog_backup(created_at DESC, id DESC);`,
		},
		{
			name: "idx_audit_log_user_name_lower",
			sql:  `CREATE INDEX IF NOT EXISTS idx_audit_log_user_name_lower ON audit_log(LOWER(user_name));`,
		},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
