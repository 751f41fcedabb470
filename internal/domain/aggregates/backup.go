package aggregates

import (
	"context"
	"time"

	"github.com/yungbote/sealant-catalog-backend/internal/domain/backup"
)

var BackupAggregateContract = Contract{
	Name:             "Catalog.BackupAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes: "Owns snapshot capture (consistent catalog read + write-once payload + BACKUP audit) and " +
		"hard deletion of snapshots with their DELETE audit.",
}

// BackupAggregate owns snapshot lifecycle writes.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeRetryable, CodeInternal.
type BackupAggregate interface {
	Aggregate

	// Capture reads the whole catalog in one consistent transaction and stores it as a new backup.
	Capture(ctx context.Context, in CaptureBackupInput) (CaptureBackupResult, error)

	// Delete hard-deletes a backup and its payload. Deleted is false when the id does not exist.
	Delete(ctx context.Context, in DeleteBackupInput) (DeleteBackupResult, error)

	// Archive marks a backup archived. The payload is untouched.
	Archive(ctx context.Context, in ArchiveBackupInput) (ArchiveBackupResult, error)
}

type CaptureBackupInput struct {
	Name        string
	Description string
	CreatedBy   string
	CapturedAt  time.Time
}

type CaptureBackupResult struct {
	Backup *backup.Backup
}

type DeleteBackupInput struct {
	BackupID  int64
	DeletedBy string
}

type DeleteBackupResult struct {
	Deleted bool
	Backup  *backup.Backup
}

type ArchiveBackupInput struct {
	BackupID   int64
	ArchivedBy string
}

type ArchiveBackupResult struct {
	Backup *backup.Backup
}
