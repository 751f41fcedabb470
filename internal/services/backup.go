package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/sealant-catalog-backend/internal/data/repos"
	"github.com/yungbote/sealant-catalog-backend/internal/data/snapshot"
	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/backup"
	"github.com/yungbote/sealant-catalog-backend/internal/observability"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

const (
	DefaultPreviewLimit = 20
	MaxPreviewLimit     = 200
)

type CreateBackupInput struct {
	Name        string
	Description string
	CreatedBy   string
}

type BackupService interface {
	Create(ctx context.Context, in CreateBackupInput) (*backup.Backup, error)
	List(ctx context.Context) ([]*backup.Backup, error)
	Get(ctx context.Context, id int64) (*backup.Backup, error)
	Preview(ctx context.Context, id int64, limit int) (*backup.Preview, error)
	// Delete reports false when no backup has the id.
	Delete(ctx context.Context, id int64, deletedBy string) (bool, error)
	Archive(ctx context.Context, id int64, archivedBy string) (*backup.Backup, error)
	Promote(ctx context.Context, id int64, promotedBy string) (domainagg.PromoteBackupResult, error)
}

type BackupServiceDeps struct {
	Backups   repos.BackupRepo
	Lifecycle domainagg.BackupAggregate
	Promotion domainagg.PromotionAggregate
	Notifier  CatalogNotifier
	Metrics   *observability.Metrics

	PreviewLimit int
}

type backupService struct {
	log          *logger.Logger
	backups      repos.BackupRepo
	lifecycle    domainagg.BackupAggregate
	promotion    domainagg.PromotionAggregate
	notifier     CatalogNotifier
	metrics      *observability.Metrics
	previewLimit int
}

func NewBackupService(baseLog *logger.Logger, deps BackupServiceDeps) BackupService {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NewNoopCatalogNotifier()
	}
	previewLimit := deps.PreviewLimit
	if previewLimit <= 0 || previewLimit > MaxPreviewLimit {
		previewLimit = DefaultPreviewLimit
	}
	return &backupService{
		log:          baseLog.With("service", "BackupService"),
		backups:      deps.Backups,
		lifecycle:    deps.Lifecycle,
		promotion:    deps.Promotion,
		notifier:     notifier,
		metrics:      deps.Metrics,
		previewLimit: previewLimit,
	}
}

func (s *backupService) Create(ctx context.Context, in CreateBackupInput) (*backup.Backup, error) {
	res, err := s.lifecycle.Capture(ctx, domainagg.CaptureBackupInput{
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   in.CreatedBy,
		CapturedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	res.Backup.SnapshotData = nil
	return res.Backup, nil
}

func (s *backupService) List(ctx context.Context) ([]*backup.Backup, error) {
	out, err := s.backups.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, "Backup.List", err)
	}
	if out == nil {
		out = []*backup.Backup{}
	}
	return out, nil
}

func (s *backupService) Get(ctx context.Context, id int64) (*backup.Backup, error) {
	const op = "Backup.Get"
	b, err := s.backups.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if b == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("backup %d not found", id), nil)
	}
	return b, nil
}

func (s *backupService) Preview(ctx context.Context, id int64, limit int) (*backup.Preview, error) {
	const op = "Backup.Preview"
	b, err := s.backups.GetWithSnapshot(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if b == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("backup %d not found", id), nil)
	}
	if len(b.SnapshotData) == 0 {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op,
			fmt.Sprintf("backup %d has no snapshot data", id), domainagg.ErrCorruptSnapshot)
	}
	items, _, err := snapshot.DecodePreview(b.SnapshotData, b.SnapshotChecksum, clampLimit(limit, s.previewLimit, MaxPreviewLimit))
	if err != nil {
		s.log.Warn("backup preview decode failed", "backup_id", id, "error", err)
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("backup %d snapshot is corrupt", id), err)
	}
	if items == nil {
		items = []backup.PreviewItem{}
	}
	return &backup.Preview{Products: items, Total: b.ProductCount}, nil
}

func (s *backupService) Delete(ctx context.Context, id int64, deletedBy string) (bool, error) {
	res, err := s.lifecycle.Delete(ctx, domainagg.DeleteBackupInput{BackupID: id, DeletedBy: deletedBy})
	if err != nil {
		return false, err
	}
	return res.Deleted, nil
}

func (s *backupService) Archive(ctx context.Context, id int64, archivedBy string) (*backup.Backup, error) {
	res, err := s.lifecycle.Archive(ctx, domainagg.ArchiveBackupInput{BackupID: id, ArchivedBy: archivedBy})
	if err != nil {
		return nil, err
	}
	return res.Backup, nil
}

func (s *backupService) Promote(ctx context.Context, id int64, promotedBy string) (domainagg.PromoteBackupResult, error) {
	res, err := s.promotion.Promote(ctx, domainagg.PromoteBackupInput{
		BackupID:   id,
		PromotedBy: promotedBy,
		PromotedAt: time.Now().UTC(),
	})
	if err != nil {
		result := string(domainagg.CodeOf(err))
		if result == "" {
			result = "failure"
		}
		s.metrics.ObservePromotion(result, 0)
		return res, err
	}
	s.metrics.ObservePromotion("success", res.ProductsRestored)
	s.notifier.CatalogPromoted(ctx, res.Backup, res.ProductsRestored, res.PreviousCount)
	return res, nil
}
