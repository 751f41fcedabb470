package aggregates

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/sealant-catalog-backend/internal/data/repos"
	"github.com/yungbote/sealant-catalog-backend/internal/data/snapshot"
	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/backup"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
)

const (
	maxBackupNameLen = 255
	// DefaultDeletedBy is recorded when a delete request names no actor.
	DefaultDeletedBy = "system"
)

type BackupAggregateDeps struct {
	Base BaseDeps

	Products repos.ProductRepo
	Backups  repos.BackupRepo
	Audit    audit.Recorder
}

type backupAggregate struct {
	deps BackupAggregateDeps
}

func NewBackupAggregate(deps BackupAggregateDeps) domainagg.BackupAggregate {
	deps.Base = deps.Base.withDefaults()
	return &backupAggregate{deps: deps}
}

func (a *backupAggregate) Contract() domainagg.Contract {
	return domainagg.BackupAggregateContract
}

func (a *backupAggregate) configured() bool {
	return a.deps.Products != nil && a.deps.Backups != nil && a.deps.Audit != nil
}

func (a *backupAggregate) Capture(ctx context.Context, in domainagg.CaptureBackupInput) (domainagg.CaptureBackupResult, error) {
	const op = "Catalog.Backup.Capture"
	var out domainagg.CaptureBackupResult

	name := strings.TrimSpace(in.Name)
	createdBy := strings.TrimSpace(in.CreatedBy)
	if name == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "backup name is required", nil)
	}
	if len(name) > maxBackupNameLen {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("backup name must be at most %d characters", maxBackupNameLen), nil)
	}
	if createdBy == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "created_by is required", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "backup aggregate repos not configured", nil)
	}
	capturedAt := in.CapturedAt.UTC()
	if in.CapturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}

	err := executeSnapshotWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		products, err := a.deps.Products.ListAll(dbc)
		if err != nil {
			return err
		}
		enc, err := snapshot.Encode(products)
		if err != nil {
			return err
		}
		row := &backup.Backup{
			BackupName:       name,
			Description:      strings.TrimSpace(in.Description),
			CreatedBy:        createdBy,
			ProductCount:     enc.Count,
			SnapshotData:     enc.Data,
			SchemaVersion:    enc.SchemaVersion,
			SnapshotChecksum: enc.Checksum,
			Status:           backup.StatusActive,
			CreatedAt:        capturedAt,
			UpdatedAt:        capturedAt,
		}
		if _, err := a.deps.Backups.Create(dbc, row); err != nil {
			return err
		}
		if _, err := a.deps.Audit.Record(dbc, audit.Entry{
			Action:     audit.ActionBackup,
			EntityType: audit.EntityBackup,
			EntityID:   strconv.FormatInt(row.ID, 10),
			UserName:   createdBy,
			Summary:    fmt.Sprintf("Created backup %q with %d products", name, enc.Count),
			After: map[string]any{
				"backup_name":   name,
				"product_count": enc.Count,
			},
		}); err != nil {
			return err
		}
		out.Backup = row
		return nil
	})
	if err != nil {
		a.deps.Base.Log.Warn("backup capture failed", "name", name, "error", err)
		return domainagg.CaptureBackupResult{}, err
	}
	a.deps.Base.Log.Info("backup captured",
		"backup_id", out.Backup.ID,
		"product_count", out.Backup.ProductCount,
		"created_by", createdBy,
	)
	return out, nil
}

func (a *backupAggregate) Delete(ctx context.Context, in domainagg.DeleteBackupInput) (domainagg.DeleteBackupResult, error) {
	const op = "Catalog.Backup.Delete"
	var out domainagg.DeleteBackupResult

	if in.BackupID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "backup id must be positive", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "backup aggregate repos not configured", nil)
	}
	deletedBy := strings.TrimSpace(in.DeletedBy)
	if deletedBy == "" {
		deletedBy = DefaultDeletedBy
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Backups.GetByID(dbc, in.BackupID)
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}
		n, err := a.deps.Backups.Delete(dbc, in.BackupID)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := a.deps.Audit.Record(dbc, audit.Entry{
			Action:     audit.ActionDelete,
			EntityType: audit.EntityBackup,
			EntityID:   strconv.FormatInt(existing.ID, 10),
			UserName:   deletedBy,
			Summary:    fmt.Sprintf("Deleted backup %q (%d products)", existing.BackupName, existing.ProductCount),
			Before:     existing.Summary(),
		}); err != nil {
			return err
		}
		out.Deleted = true
		out.Backup = existing
		return nil
	})
	if err != nil {
		return domainagg.DeleteBackupResult{}, err
	}
	if out.Deleted {
		a.deps.Base.Log.Info("backup deleted", "backup_id", in.BackupID, "deleted_by", deletedBy)
	}
	return out, nil
}

func (a *backupAggregate) Archive(ctx context.Context, in domainagg.ArchiveBackupInput) (domainagg.ArchiveBackupResult, error) {
	const op = "Catalog.Backup.Archive"
	var out domainagg.ArchiveBackupResult

	if in.BackupID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "backup id must be positive", nil)
	}
	archivedBy := strings.TrimSpace(in.ArchivedBy)
	if archivedBy == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "archived_by is required", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "backup aggregate repos not configured", nil)
	}
	now := time.Now().UTC()

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Backups.GetByID(dbc, in.BackupID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("backup %d not found", in.BackupID), nil)
		}
		// Archiving twice is a no-op.
		if existing.Status == backup.StatusArchived {
			out.Backup = existing
			return nil
		}
		if err := RequireStatusAllowed(string(existing.Status), string(backup.StatusActive), string(backup.StatusPromoted)); err != nil {
			return err
		}
		ok, err := a.deps.Base.Guard.UpdateByStatus(dbc, backup.Backup{}.TableName(), existing.ID,
			[]string{string(existing.Status)},
			map[string]any{"status": backup.StatusArchived, "updated_at": now},
		)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "backup status changed concurrently"); err != nil {
			return err
		}

		after := *existing
		after.Status = backup.StatusArchived
		after.UpdatedAt = now
		if _, err := a.deps.Audit.Record(dbc, audit.Entry{
			Action:     audit.ActionUpdate,
			EntityType: audit.EntityBackup,
			EntityID:   strconv.FormatInt(existing.ID, 10),
			UserName:   archivedBy,
			Summary:    fmt.Sprintf("Archived backup %q", existing.BackupName),
			Before:     existing.Summary(),
			After:      after.Summary(),
		}); err != nil {
			return err
		}
		out.Backup = &after
		return nil
	})
	if err != nil {
		return domainagg.ArchiveBackupResult{}, err
	}
	return out, nil
}
