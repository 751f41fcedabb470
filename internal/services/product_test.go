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
	"github.com/yungbote/sealant-catalog-backend/internal/domain/catalog"
)

func TestProductCRUDIsAudited(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	created, err := env.Product.Create(ctx, ProductInput{
		ProductID: " SL-100 ",
		Name:      "Flex Seal",
		Brand:     "Acme",
		Benefits:  []string{"waterproof", "flexible"},
		Technical: []catalog.TechnicalProperty{{Property: "Cure time", Value: "24", Unit: "h"}},
	}, "alice")
	require.NoError(t, err)
	assert.Equal(t, "SL-100", created.ProductID)
	assert.Equal(t, 2, created.BenefitsCount)
	assert.NotEmpty(t, created.LastEdited)

	updated, err := env.Product.Update(ctx, "SL-100", ProductInput{Name: "Flex Seal Pro", Brand: "Acme"}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "Flex Seal Pro", updated.Name)
	assert.Zero(t, updated.BenefitsCount)
	assert.NotNil(t, updated.Benefits)

	got, err := env.Product.Get(ctx, "SL-100")
	require.NoError(t, err)
	assert.Equal(t, "Flex Seal Pro", got.Name)

	deleted, err := env.Product.Delete(ctx, "SL-100", "carol")
	require.NoError(t, err)
	assert.True(t, deleted)

	page, err := env.Audit.List(ctx, audit.Filter{EntityType: audit.EntityProduct, EntityID: "SL-100"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Logs, 3)
	assert.Equal(t, audit.ActionDelete, page.Logs[0].Action)
	assert.Equal(t, "carol", page.Logs[0].UserName)
	assert.True(t, strings.Contains(string(page.Logs[0].BeforeData), "Flex Seal Pro"))
	assert.Empty(t, page.Logs[0].AfterData)

	assert.Equal(t, audit.ActionUpdate, page.Logs[1].Action)
	assert.True(t, strings.Contains(string(page.Logs[1].BeforeData), `"Flex Seal"`))
	assert.True(t, strings.Contains(string(page.Logs[1].AfterData), "Flex Seal Pro"))

	assert.Equal(t, audit.ActionCreate, page.Logs[2].Action)
	assert.Empty(t, page.Logs[2].BeforeData)

	assert.Equal(t, []string{
		ChannelCatalogProductChange,
		ChannelCatalogProductChange,
		ChannelCatalogProductChange,
	}, env.events.channels())
}

func TestProductCreateDuplicateConflicts(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	repotest.SeedProducts(t, env.db, "A")

	_, err := env.Product.Create(ctx, ProductInput{ProductID: "A", Name: "Again"}, "alice")
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeConflict))
	assert.Zero(t, repotest.CountAudit(t, env.db, audit.ActionCreate))
}

func TestProductValidation(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	_, err := env.Product.Create(ctx, ProductInput{Name: "No id"}, "alice")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
	_, err = env.Product.Create(ctx, ProductInput{ProductID: "X"}, "alice")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
	_, err = env.Product.Create(ctx, ProductInput{ProductID: "X", Name: "X"}, " ")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
	_, err = env.Product.List(ctx, 10, -1)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
}

func TestProductMissing(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	_, err := env.Product.Get(ctx, "nope")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
	_, err = env.Product.Update(ctx, "nope", ProductInput{Name: "x"}, "alice")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))

	deleted, err := env.Product.Delete(ctx, "nope", "alice")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Zero(t, repotest.CountAudit(t, env.db, audit.ActionDelete))
	assert.Empty(t, env.events.channels())
}

func TestProductListPages(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	repotest.SeedProducts(t, env.db, "A", "B", "C")

	page, err := env.Product.List(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "B", page.Products[0].ProductID)
	assert.Equal(t, "C", page.Products[1].ProductID)
}
