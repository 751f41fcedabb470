package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/catalog"
)

// Product builds a normalized product with a deterministic payload.
func Product(productID, name string) *catalog.Product {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &catalog.Product{
		ProductID:    productID,
		Name:         name,
		FullName:     name + " Sealant",
		Description:  "fixture " + productID,
		Brand:        "Acme",
		Industry:     "construction",
		Chemistry:    "polyurethane",
		Benefits:     datatypes.JSONSlice[string]{"waterproof", "paintable"},
		Applications: datatypes.JSONSlice[string]{"windows"},
		Technical: datatypes.JSONSlice[catalog.TechnicalProperty]{
			{Property: "Cure time", Value: "24", Unit: "h"},
		},
		Sizing:     datatypes.JSONSlice[string]{"300ml"},
		Published:  true,
		LastEdited: "fixture",
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	p.Normalize()
	return p
}

func SeedProducts(tb testing.TB, db *gorm.DB, productIDs ...string) []*catalog.Product {
	tb.Helper()
	out := make([]*catalog.Product, 0, len(productIDs))
	for _, id := range productIDs {
		out = append(out, Product(id, fmt.Sprintf("Product %s", id)))
	}
	if len(out) == 0 {
		return out
	}
	if err := db.WithContext(context.Background()).Create(&out).Error; err != nil {
		tb.Fatalf("seed products: %v", err)
	}
	return out
}

// ProductIDs returns the live catalog's product ids in storage order.
func ProductIDs(tb testing.TB, db *gorm.DB) []string {
	tb.Helper()
	var ids []string
	if err := db.Model(&catalog.Product{}).Order("id ASC").Pluck("product_id", &ids).Error; err != nil {
		tb.Fatalf("pluck product ids: %v", err)
	}
	return ids
}

func CountAudit(tb testing.TB, db *gorm.DB, action audit.Action) int64 {
	tb.Helper()
	var n int64
	q := db.Model(&audit.AuditLog{})
	if action != "" {
		q = q.Where("action = ?", action)
	}
	if err := q.Count(&n).Error; err != nil {
		tb.Fatalf("count audit: %v", err)
	}
	return n
}
