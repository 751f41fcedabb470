package backup

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/sealant-catalog-backend/internal/domain/backup"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

// BackupRepo stores snapshot rows. Only Create writes snapshot_data; the
// read paths other than GetWithSnapshot never select it.
type BackupRepo interface {
	Create(dbc dbctx.Context, b *types.Backup) (*types.Backup, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Backup, error)
	GetWithSnapshot(dbc dbctx.Context, id int64) (*types.Backup, error)
	List(dbc dbctx.Context) ([]*types.Backup, error)
	MarkPromoted(dbc dbctx.Context, id int64, promotedBy string, at time.Time) (int64, error)
	UpdateStatus(dbc dbctx.Context, id int64, status types.Status, at time.Time) (int64, error)
	Delete(dbc dbctx.Context, id int64) (int64, error)
}

type backupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBackupRepo(db *gorm.DB, baseLog *logger.Logger) BackupRepo {
	return &backupRepo{
		db:  db,
		log: baseLog.With("repo", "BackupRepo"),
	}
}

func (r *backupRepo) Create(dbc dbctx.Context, b *types.Backup) (*types.Backup, error) {
	if b == nil {
		return nil, errors.New("nil backup")
	}
	if b.Status == "" {
		b.Status = types.StatusActive
	}
	if err := dbc.DB(r.db).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *backupRepo) GetByID(dbc dbctx.Context, id int64) (*types.Backup, error) {
	return r.get(dbc, id, types.MetadataColumns)
}

func (r *backupRepo) GetWithSnapshot(dbc dbctx.Context, id int64) (*types.Backup, error) {
	return r.get(dbc, id, nil)
}

func (r *backupRepo) get(dbc dbctx.Context, id int64, columns []string) (*types.Backup, error) {
	if id <= 0 {
		return nil, nil
	}
	q := dbc.DB(r.db).Where("id = ?", id)
	if len(columns) > 0 {
		q = q.Select(columns)
	}
	var b types.Backup
	err := q.Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *backupRepo) List(dbc dbctx.Context) ([]*types.Backup, error) {
	var out []*types.Backup
	if err := dbc.DB(r.db).
		Select(types.MetadataColumns).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *backupRepo) MarkPromoted(dbc dbctx.Context, id int64, promotedBy string, at time.Time) (int64, error) {
	res := dbc.DB(r.db).
		Model(&types.Backup{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      types.StatusPromoted,
			"promoted_at": at,
			"promoted_by": promotedBy,
			"updated_at":  at,
		})
	return res.RowsAffected, res.Error
}

func (r *backupRepo) UpdateStatus(dbc dbctx.Context, id int64, status types.Status, at time.Time) (int64, error) {
	if !status.Valid() {
		return 0, errors.New("invalid backup status")
	}
	res := dbc.DB(r.db).
		Model(&types.Backup{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *backupRepo) Delete(dbc dbctx.Context, id int64) (int64, error) {
	res := dbc.DB(r.db).
		Where("id = ?", id).
		Delete(&types.Backup{})
	return res.RowsAffected, res.Error
}
