package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	dataagg "github.com/yungbote/sealant-catalog-backend/internal/data/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/data/repos"
	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/catalog"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

const (
	DefaultProductPageLimit = 100
	MaxProductPageLimit     = 1000
)

// ProductInput is the editable part of a product. ProductID is ignored on update.
type ProductInput struct {
	ProductID    string                      `json:"product_id"`
	Name         string                      `json:"name"`
	FullName     string                      `json:"full_name"`
	Description  string                      `json:"description"`
	Brand        string                      `json:"brand"`
	Industry     string                      `json:"industry"`
	Chemistry    string                      `json:"chemistry"`
	URL          string                      `json:"url"`
	Image        string                      `json:"image"`
	Benefits     []string                    `json:"benefits"`
	Applications []string                    `json:"applications"`
	Technical    []catalog.TechnicalProperty `json:"technical"`
	Sizing       []string                    `json:"sizing"`
	Published    bool                        `json:"published"`
	LastEdited   string                      `json:"last_edited"`
}

type ProductPage struct {
	Products []*catalog.Product `json:"products"`
	Total    int64              `json:"total"`
}

// ProductService is the audited single-product write path. Whole-catalog
// replacement belongs to the promotion aggregate.
type ProductService interface {
	List(ctx context.Context, limit, offset int) (ProductPage, error)
	Get(ctx context.Context, productID string) (*catalog.Product, error)
	Create(ctx context.Context, in ProductInput, actor string) (*catalog.Product, error)
	Update(ctx context.Context, productID string, in ProductInput, actor string) (*catalog.Product, error)
	// Delete reports false when no product has the id.
	Delete(ctx context.Context, productID, actor string) (bool, error)
}

type productService struct {
	db       *gorm.DB
	log      *logger.Logger
	products repos.ProductRepo
	audit    audit.Recorder
	notifier CatalogNotifier
}

func NewProductService(db *gorm.DB, baseLog *logger.Logger, products repos.ProductRepo, recorder audit.Recorder, notifier CatalogNotifier) ProductService {
	if notifier == nil {
		notifier = NewNoopCatalogNotifier()
	}
	return &productService{
		db:       db,
		log:      baseLog.With("service", "ProductService"),
		products: products,
		audit:    recorder,
		notifier: notifier,
	}
}

func (s *productService) List(ctx context.Context, limit, offset int) (ProductPage, error) {
	const op = "Product.List"
	if offset < 0 {
		return ProductPage{}, domainagg.NewError(domainagg.CodeValidation, op, "offset must be >= 0", nil)
	}
	limit = clampLimit(limit, DefaultProductPageLimit, MaxProductPageLimit)
	out, total, err := s.products.List(dbctx.Context{Ctx: ctx}, limit, offset)
	if err != nil {
		return ProductPage{}, dataagg.MapError(op, err)
	}
	if out == nil {
		out = []*catalog.Product{}
	}
	return ProductPage{Products: out, Total: total}, nil
}

func (s *productService) Get(ctx context.Context, productID string) (*catalog.Product, error) {
	const op = "Product.Get"
	productID = strings.TrimSpace(productID)
	p, err := s.products.GetByProductID(dbctx.Context{Ctx: ctx}, productID)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("product %q not found", productID), nil)
	}
	return p, nil
}

func (s *productService) Create(ctx context.Context, in ProductInput, actor string) (*catalog.Product, error) {
	const op = "Product.Create"
	actor = strings.TrimSpace(actor)
	p := in.toProduct()
	p.ProductID = strings.TrimSpace(in.ProductID)
	if err := validateProduct(op, p, actor); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.products.GetByProductID(dbc, p.ProductID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("product %q already exists", p.ProductID), nil)
		}
		if _, err := s.products.Create(dbc, []*catalog.Product{p}); err != nil {
			return err
		}
		_, err = s.audit.Record(dbc, audit.Entry{
			Action:     audit.ActionCreate,
			EntityType: audit.EntityProduct,
			EntityID:   p.ProductID,
			UserName:   actor,
			Summary:    fmt.Sprintf("Created product %s", p.ProductID),
			After:      p,
		})
		return err
	})
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	s.notifier.ProductChanged(ctx, audit.ActionCreate, p.ProductID, actor)
	return p, nil
}

func (s *productService) Update(ctx context.Context, productID string, in ProductInput, actor string) (*catalog.Product, error) {
	const op = "Product.Update"
	actor = strings.TrimSpace(actor)
	p := in.toProduct()
	p.ProductID = strings.TrimSpace(productID)
	if err := validateProduct(op, p, actor); err != nil {
		return nil, err
	}

	var updated *catalog.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		before, err := s.products.GetByProductID(dbc, p.ProductID)
		if err != nil {
			return err
		}
		if before == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("product %q not found", p.ProductID), nil)
		}
		if err := s.products.Update(dbc, p); err != nil {
			return err
		}
		updated, err = s.products.GetByProductID(dbc, p.ProductID)
		if err != nil {
			return err
		}
		_, err = s.audit.Record(dbc, audit.Entry{
			Action:     audit.ActionUpdate,
			EntityType: audit.EntityProduct,
			EntityID:   p.ProductID,
			UserName:   actor,
			Summary:    fmt.Sprintf("Updated product %s", p.ProductID),
			Before:     before,
			After:      updated,
		})
		return err
	})
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	s.notifier.ProductChanged(ctx, audit.ActionUpdate, p.ProductID, actor)
	return updated, nil
}

func (s *productService) Delete(ctx context.Context, productID, actor string) (bool, error) {
	const op = "Product.Delete"
	productID = strings.TrimSpace(productID)
	actor = strings.TrimSpace(actor)
	if productID == "" {
		return false, domainagg.NewError(domainagg.CodeValidation, op, "product_id is required", nil)
	}
	if actor == "" {
		return false, domainagg.NewError(domainagg.CodeValidation, op, "user_name is required", nil)
	}

	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		before, err := s.products.GetByProductID(dbc, productID)
		if err != nil || before == nil {
			return err
		}
		n, err := s.products.DeleteByProductID(dbc, productID)
		if err != nil || n == 0 {
			return err
		}
		deleted = true
		_, err = s.audit.Record(dbc, audit.Entry{
			Action:     audit.ActionDelete,
			EntityType: audit.EntityProduct,
			EntityID:   productID,
			UserName:   actor,
			Summary:    fmt.Sprintf("Deleted product %s", productID),
			Before:     before,
		})
		return err
	})
	if err != nil {
		return false, dataagg.MapError(op, err)
	}
	if deleted {
		s.notifier.ProductChanged(ctx, audit.ActionDelete, productID, actor)
	}
	return deleted, nil
}

func (in ProductInput) toProduct() *catalog.Product {
	p := &catalog.Product{
		Name:         in.Name,
		FullName:     in.FullName,
		Description:  in.Description,
		Brand:        in.Brand,
		Industry:     in.Industry,
		Chemistry:    in.Chemistry,
		URL:          in.URL,
		Image:        in.Image,
		Benefits:     datatypes.JSONSlice[string](in.Benefits),
		Applications: datatypes.JSONSlice[string](in.Applications),
		Technical:    datatypes.JSONSlice[catalog.TechnicalProperty](in.Technical),
		Sizing:       datatypes.JSONSlice[string](in.Sizing),
		Published:    in.Published,
		LastEdited:   strings.TrimSpace(in.LastEdited),
	}
	if p.LastEdited == "" {
		p.LastEdited = time.Now().UTC().Format(time.RFC3339)
	}
	p.Normalize()
	return p
}

func validateProduct(op string, p *catalog.Product, actor string) error {
	if p.ProductID == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "product_id is required", nil)
	}
	if p.Name == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "name is required", nil)
	}
	if actor == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "user_name is required", nil)
	}
	return nil
}
