package aggregates

import (
	"context"
	"time"

	"github.com/yungbote/sealant-catalog-backend/internal/domain/backup"
)

var PromotionAggregateContract = Contract{
	Name:             "Catalog.PromotionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes: "Only writer allowed to bulk-delete the catalog. Replaces every product with a backup's " +
		"payload, marks the backup promoted and appends the RESTORE audit row in one transaction.",
}

// PromotionAggregate owns whole-catalog replacement.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound (unknown or corrupt backup), CodeConflict / CodeRetryable
// (another promotion holds the catalog), CodeInternal.
type PromotionAggregate interface {
	Aggregate

	// Promote atomically replaces the live catalog with the backup's snapshot.
	Promote(ctx context.Context, in PromoteBackupInput) (PromoteBackupResult, error)
}

type PromoteBackupInput struct {
	BackupID   int64
	PromotedBy string
	PromotedAt time.Time
}

type PromoteBackupResult struct {
	Backup           *backup.Backup
	ProductsRestored int
	PreviousCount    int
	EmptySnapshot    bool
}
