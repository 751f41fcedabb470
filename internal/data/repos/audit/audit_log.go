package audit

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

// AuditLogRepo is append-only: rows can be inserted and read, never changed.
type AuditLogRepo interface {
	Create(dbc dbctx.Context, row *types.AuditLog) (*types.AuditLog, error)
	GetByID(dbc dbctx.Context, id int64) (*types.AuditLog, error)
	List(dbc dbctx.Context, filter types.Filter, limit, offset int) ([]*types.AuditLog, int64, error)
}

type auditLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return &auditLogRepo{
		db:  db,
		log: baseLog.With("repo", "AuditLogRepo"),
	}
}

func (r *auditLogRepo) Create(dbc dbctx.Context, row *types.AuditLog) (*types.AuditLog, error) {
	if row == nil {
		return nil, errors.New("nil audit row")
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *auditLogRepo) GetByID(dbc dbctx.Context, id int64) (*types.AuditLog, error) {
	if id <= 0 {
		return nil, nil
	}
	var row types.AuditLog
	err := dbc.DB(r.db).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *auditLogRepo) List(dbc dbctx.Context, filter types.Filter, limit, offset int) ([]*types.AuditLog, int64, error) {
	q := applyFilter(dbc.DB(r.db).Model(&types.AuditLog{}), filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []*types.AuditLog
	page := applyFilter(dbc.DB(r.db), filter).Order("id DESC")
	if limit > 0 {
		page = page.Limit(limit)
	}
	if offset > 0 {
		page = page.Offset(offset)
	}
	if err := page.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func applyFilter(q *gorm.DB, f types.Filter) *gorm.DB {
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if name := strings.TrimSpace(f.UserName); name != "" {
		q = q.Where(`LOWER(user_name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(name))+"%")
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
