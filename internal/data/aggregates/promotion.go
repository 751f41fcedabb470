package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/sealant-catalog-backend/internal/data/repos"
	"github.com/yungbote/sealant-catalog-backend/internal/data/snapshot"
	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/backup"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/catalog"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
)

type PromotionAggregateDeps struct {
	Base BaseDeps

	Products repos.ProductRepo
	Backups  repos.BackupRepo
	Audit    audit.Recorder

	// Local serializes promotions within the process. Defaults to a fresh
	// LocalLock; share one instance between aggregates over the same catalog.
	Local Locker
	// Distributed is optional and must not block; a held lock fails the
	// promotion with CodeConflict.
	Distributed Locker
}

type promotionAggregate struct {
	deps PromotionAggregateDeps
}

func NewPromotionAggregate(deps PromotionAggregateDeps) domainagg.PromotionAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Local == nil {
		deps.Local = NewLocalLock()
	}
	return &promotionAggregate{deps: deps}
}

func (a *promotionAggregate) Contract() domainagg.Contract {
	return domainagg.PromotionAggregateContract
}

func (a *promotionAggregate) Promote(ctx context.Context, in domainagg.PromoteBackupInput) (domainagg.PromoteBackupResult, error) {
	const op = "Catalog.Promotion.Promote"
	var out domainagg.PromoteBackupResult

	promotedBy := strings.TrimSpace(in.PromotedBy)
	if in.BackupID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "backup id must be positive", nil)
	}
	if promotedBy == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "promoted_by is required", nil)
	}
	if a.deps.Products == nil || a.deps.Backups == nil || a.deps.Audit == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "promotion aggregate repos not configured", nil)
	}
	promotedAt := in.PromotedAt.UTC()
	if in.PromotedAt.IsZero() {
		promotedAt = time.Now().UTC()
	}
	log := a.deps.Base.Log.With("backup_id", in.BackupID, "promoted_by", promotedBy)

	source, products, err := a.loadSnapshot(ctx, op, in.BackupID)
	if err != nil {
		log.Warn("promotion rejected", "error", err)
		return out, err
	}

	release, err := a.deps.Local.Acquire(ctx)
	if err != nil {
		err = MapError(op, err)
		log.Warn("promotion lock wait aborted", "error", err)
		return out, err
	}
	defer release()

	if a.deps.Distributed != nil {
		releaseDistributed, err := a.deps.Distributed.Acquire(ctx)
		if errors.Is(err, ErrLockHeld) {
			err = domainagg.NewError(domainagg.CodeConflict, op, "another promotion is in progress", err)
			a.deps.Base.Hooks.IncConflict(op)
			log.Warn("promotion lost distributed lock", "error", err)
			return out, err
		}
		if err != nil {
			err = MapError(op, err)
			log.Warn("promotion distributed lock failed", "error", err)
			return out, err
		}
		defer releaseDistributed()
	}

	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		ok, err := tryAdvisoryXactLock(dbc, promotionAdvisoryKey)
		if err != nil {
			return err
		}
		if !ok {
			return ConflictError("another promotion is in progress")
		}
		if err := a.deps.Products.LockForReplace(dbc); err != nil {
			return err
		}

		previous, err := a.deps.Products.Count(dbc)
		if err != nil {
			return err
		}
		if _, err := a.deps.Products.DeleteAll(dbc); err != nil {
			return err
		}
		if _, err := a.deps.Products.Create(dbc, products); err != nil {
			return err
		}
		restored, err := a.deps.Products.Count(dbc)
		if err != nil {
			return err
		}

		n, err := a.deps.Backups.MarkPromoted(dbc, source.ID, promotedBy, promotedAt)
		if err != nil {
			return err
		}
		if n == 0 {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("backup %d not found", source.ID), nil)
		}

		if _, err := a.deps.Audit.Record(dbc, audit.Entry{
			Action:     audit.ActionRestore,
			EntityType: audit.EntityProduct,
			EntityID:   audit.EntityIDAllProducts,
			UserName:   promotedBy,
			Summary: fmt.Sprintf("Promoted backup %q (#%d): replaced %d products with %d",
				source.BackupName, source.ID, previous, restored),
			Before: map[string]any{
				"product_count": previous,
			},
			After: map[string]any{
				"product_count": restored,
				"source_backup": source.ID,
				"backup_name":   source.BackupName,
			},
		}); err != nil {
			return err
		}

		out.PreviousCount = int(previous)
		out.ProductsRestored = int(restored)
		return nil
	})
	if err != nil {
		log.Warn("promotion failed, catalog unchanged", "error", err)
		return domainagg.PromoteBackupResult{}, err
	}

	source.SnapshotData = nil
	source.Status = backup.StatusPromoted
	source.PromotedAt = &promotedAt
	source.PromotedBy = promotedBy
	source.UpdatedAt = promotedAt
	out.Backup = source
	out.EmptySnapshot = out.ProductsRestored == 0

	log.Info("backup promoted",
		"products_restored", out.ProductsRestored,
		"previous_count", out.PreviousCount,
	)
	return out, nil
}

// loadSnapshot reads and decodes the backup outside the write transaction so
// a missing or corrupt payload never takes the catalog lock.
func (a *promotionAggregate) loadSnapshot(ctx context.Context, op string, backupID int64) (*backup.Backup, []*catalog.Product, error) {
	src, err := a.deps.Backups.GetWithSnapshot(dbctx.Context{Ctx: ctx}, backupID)
	if err != nil {
		return nil, nil, MapError(op, err)
	}
	if src == nil {
		return nil, nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("backup %d not found", backupID), nil)
	}
	if len(src.SnapshotData) == 0 {
		return nil, nil, domainagg.NewError(domainagg.CodeNotFound, op,
			fmt.Sprintf("backup %d has no snapshot data", backupID), domainagg.ErrCorruptSnapshot)
	}
	products, err := snapshot.Decode(src.SnapshotData, src.SnapshotChecksum)
	if err != nil {
		return nil, nil, domainagg.NewError(domainagg.CodeNotFound, op,
			fmt.Sprintf("backup %d snapshot is corrupt", backupID), err)
	}
	if len(products) != src.ProductCount {
		return nil, nil, domainagg.NewError(domainagg.CodeNotFound, op,
			fmt.Sprintf("backup %d snapshot holds %d products, expected %d", backupID, len(products), src.ProductCount),
			domainagg.ErrCorruptSnapshot)
	}
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if _, dup := seen[p.ProductID]; dup {
			return nil, nil, domainagg.NewError(domainagg.CodeNotFound, op,
				fmt.Sprintf("backup %d snapshot repeats product_id %q", backupID, p.ProductID),
				domainagg.ErrCorruptSnapshot)
		}
		seen[p.ProductID] = struct{}{}
	}
	return src, products, nil
}
