package backup

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusPromoted Status = "promoted"
	StatusArchived Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPromoted, StatusArchived:
		return true
	}
	return false
}

// Backup is a point-in-time copy of the whole catalog. SnapshotData is written
// once together with the row and never updated.
type Backup struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	BackupName       string     `gorm:"column:backup_name;not null" json:"backup_name"`
	Description      string     `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedBy        string     `gorm:"column:created_by;not null" json:"created_by"`
	ProductCount     int        `gorm:"column:product_count;not null;default:0" json:"product_count"`
	SnapshotData     []byte     `gorm:"column:snapshot_data" json:"-"`
	SchemaVersion    int        `gorm:"column:schema_version;not null;default:1" json:"schema_version"`
	SnapshotChecksum string     `gorm:"column:snapshot_checksum" json:"snapshot_checksum,omitempty"`
	Status           Status     `gorm:"column:status;type:varchar(16);not null;default:active;index" json:"status"`
	PromotedAt       *time.Time `gorm:"column:promoted_at" json:"promoted_at,omitempty"`
	PromotedBy       string     `gorm:"column:promoted_by" json:"promoted_by,omitempty"`
	CreatedAt        time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}

func (Backup) TableName() string { return "catalog_backup" }

// MetadataColumns lists every column except the snapshot payload.
var MetadataColumns = []string{
	"id",
	"backup_name",
	"description",
	"created_by",
	"product_count",
	"schema_version",
	"snapshot_checksum",
	"status",
	"promoted_at",
	"promoted_by",
	"created_at",
	"updated_at",
}

// Summary is the metadata kept in audit before/after data.
func (b *Backup) Summary() map[string]any {
	if b == nil {
		return nil
	}
	out := map[string]any{
		"id":            b.ID,
		"backup_name":   b.BackupName,
		"product_count": b.ProductCount,
		"status":        string(b.Status),
		"created_by":    b.CreatedBy,
		"created_at":    b.CreatedAt,
	}
	if b.Description != "" {
		out["description"] = b.Description
	}
	if b.PromotedAt != nil {
		out["promoted_at"] = *b.PromotedAt
		out["promoted_by"] = b.PromotedBy
	}
	return out
}

// PreviewItem carries only the identifying fields of a captured product.
type PreviewItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	Industry  string `json:"industry"`
}

type Preview struct {
	Products []PreviewItem `json:"products"`
	Total    int           `json:"total"`
}
