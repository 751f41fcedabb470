package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repotest "github.com/yungbote/sealant-catalog-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/backup"
)

func TestBackupCreateAndPreviewMatchCatalog(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	repotest.SeedProducts(t, env.db, "A", "B", "C")

	b, err := env.Backup.Create(ctx, CreateBackupInput{Name: "nightly", Description: "before import", CreatedBy: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 3, b.ProductCount)
	assert.Equal(t, backup.StatusActive, b.Status)
	assert.Nil(t, b.SnapshotData)

	preview, err := env.Backup.Preview(ctx, b.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, preview.Total)
	ids := make([]string, 0, len(preview.Products))
	for _, item := range preview.Products {
		ids = append(ids, item.ProductID)
	}
	assert.Equal(t, repotest.ProductIDs(t, env.db), ids)
	assert.Equal(t, "Product A", preview.Products[0].Name)

	limited, err := env.Backup.Preview(ctx, b.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited.Products, 2)
	assert.Equal(t, 3, limited.Total)

	got, err := env.Backup.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "nightly", got.BackupName)

	list, err := env.Backup.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestBackupMissingIsNotFound(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	_, err := env.Backup.Get(ctx, 9999)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
	_, err = env.Backup.Preview(ctx, 9999, 10)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))

	list, err := env.Backup.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestBackupPreviewCorruptPayloadIsNotFound(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	repotest.SeedProducts(t, env.db, "A")
	b, err := env.Backup.Create(ctx, CreateBackupInput{Name: "b1", CreatedBy: "alice"})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&backup.Backup{}).Where("id = ?", b.ID).
		Update("snapshot_data", []byte("{not json")).Error)

	_, err = env.Backup.Preview(ctx, b.ID, 10)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
	assert.ErrorIs(t, err, domainagg.ErrCorruptSnapshot)
}

func TestBackupDeleteNonexistentReturnsFalseWithoutAudit(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	deleted, err := env.Backup.Delete(ctx, 9999, "alice")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Zero(t, repotest.CountAudit(t, env.db, audit.ActionDelete))

	b, err := env.Backup.Create(ctx, CreateBackupInput{Name: "b1", CreatedBy: "alice"})
	require.NoError(t, err)
	deleted, err = env.Backup.Delete(ctx, b.ID, "")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, int64(1), repotest.CountAudit(t, env.db, audit.ActionDelete))

	_, err = env.Backup.Get(ctx, b.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}

func TestBackupArchive(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	b, err := env.Backup.Create(ctx, CreateBackupInput{Name: "b1", CreatedBy: "alice"})
	require.NoError(t, err)

	archived, err := env.Backup.Archive(ctx, b.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, backup.StatusArchived, archived.Status)

	_, err = env.Backup.Archive(ctx, b.ID, "")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
}

func TestBackupPromoteRestoresAndNotifies(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	repotest.SeedProducts(t, env.db, "A", "B")
	b, err := env.Backup.Create(ctx, CreateBackupInput{Name: "b1", CreatedBy: "alice"})
	require.NoError(t, err)

	_, err = env.Product.Create(ctx, ProductInput{ProductID: "C", Name: "Product C"}, "alice")
	require.NoError(t, err)

	res, err := env.Backup.Promote(ctx, b.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ProductsRestored)
	assert.Equal(t, 3, res.PreviousCount)
	assert.False(t, res.EmptySnapshot)
	assert.Equal(t, []string{"A", "B"}, repotest.ProductIDs(t, env.db))
	assert.Equal(t, int64(1), repotest.CountAudit(t, env.db, audit.ActionRestore))

	assert.Contains(t, env.events.channels(), ChannelCatalogPromoted)
	body := env.scrape(t)
	assert.True(t, strings.Contains(body, `sealant_catalog_promotion_total{result="success"} 1`))
	assert.True(t, strings.Contains(body, `sealant_catalog_events_published_total{channel="catalog.promoted",status="ok"} 1`))
}

func TestBackupPromoteUnknownLeavesCatalogUnchanged(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	repotest.SeedProducts(t, env.db, "A", "B")

	_, err := env.Backup.Promote(ctx, 9999, "bob")
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
	assert.Equal(t, []string{"A", "B"}, repotest.ProductIDs(t, env.db))
	assert.Zero(t, repotest.CountAudit(t, env.db, audit.ActionRestore))
	assert.NotContains(t, env.events.channels(), ChannelCatalogPromoted)
	assert.True(t, strings.Contains(env.scrape(t), `sealant_catalog_promotion_total{result="not_found"} 1`))
}

func TestBackupPromotePublishFailureDoesNotFail(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	repotest.SeedProducts(t, env.db, "A")
	b, err := env.Backup.Create(ctx, CreateBackupInput{Name: "b1", CreatedBy: "alice"})
	require.NoError(t, err)

	env.events.Fail = errPublish
	res, err := env.Backup.Promote(ctx, b.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ProductsRestored)
	assert.True(t, strings.Contains(env.scrape(t),
		`sealant_catalog_events_published_total{channel="catalog.promoted",status="error"} 1`))
}
