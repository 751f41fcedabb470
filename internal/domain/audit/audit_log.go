package audit

import (
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
)

type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionRestore Action = "RESTORE"
	ActionBackup  Action = "BACKUP"
)

type EntityType string

const (
	EntityProduct EntityType = "product"
	EntityBackup  EntityType = "backup"
	EntitySystem  EntityType = "system"
)

// EntityIDAllProducts is the entity id of actions that affect the whole catalog.
const EntityIDAllProducts = "ALL_PRODUCTS"

// AuditLog rows are append-only. The id order is the audit order.
type AuditLog struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Action         Action         `gorm:"column:action;type:varchar(16);not null;index" json:"action"`
	EntityType     EntityType     `gorm:"column:entity_type;type:varchar(16);not null;index:idx_audit_log_entity,priority:1" json:"entity_type"`
	EntityID       string         `gorm:"column:entity_id;not null;index:idx_audit_log_entity,priority:2" json:"entity_id"`
	UserName       string         `gorm:"column:user_name;not null;index" json:"user_name"`
	UserEmail      string         `gorm:"column:user_email" json:"user_email,omitempty"`
	IPAddress      string         `gorm:"column:ip_address" json:"ip_address,omitempty"`
	UserAgent      string         `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	RequestID      string         `gorm:"column:request_id" json:"request_id,omitempty"`
	ChangesSummary string         `gorm:"column:changes_summary;type:text" json:"changes_summary"`
	BeforeData     datatypes.JSON `gorm:"column:before_data" json:"before_data,omitempty"`
	AfterData      datatypes.JSON `gorm:"column:after_data" json:"after_data,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_log" }

// Entry is the input to Recorder.Record. Before and After are marshalled to
// JSON as-is; nil leaves the column empty.
type Entry struct {
	Action     Action
	EntityType EntityType
	EntityID   string
	UserName   string
	UserEmail  string
	IPAddress  string
	UserAgent  string
	Summary    string
	Before     any
	After      any
}

// Filter fields are optional. UserName matches as a case-insensitive substring,
// the rest match exactly.
type Filter struct {
	Action     Action
	EntityType EntityType
	EntityID   string
	UserName   string
}

// Recorder appends audit rows. When dbc carries a transaction the row is
// written inside it.
type Recorder interface {
	Record(dbc dbctx.Context, in Entry) (*AuditLog, error)
}

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionRestore, ActionBackup:
		return true
	}
	return false
}

func (e EntityType) Valid() bool {
	switch e {
	case EntityProduct, EntityBackup, EntitySystem:
		return true
	}
	return false
}
