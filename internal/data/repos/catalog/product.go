package catalog

import (
	"errors"
	"time"

	"gorm.io/gorm"

	catalogdb "github.com/yungbote/sealant-catalog-backend/internal/data/db"
	types "github.com/yungbote/sealant-catalog-backend/internal/domain/catalog"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

const createBatchSize = 200

// ErrTxRequired is returned by the bulk operations that must run inside the
// caller's transaction.
var ErrTxRequired = errors.New("operation requires an open transaction")

type ProductRepo interface {
	ListAll(dbc dbctx.Context) ([]*types.Product, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.Product, int64, error)
	GetByProductID(dbc dbctx.Context, productID string) (*types.Product, error)
	Count(dbc dbctx.Context) (int64, error)
	Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error)
	Update(dbc dbctx.Context, product *types.Product) error
	DeleteByProductID(dbc dbctx.Context, productID string) (int64, error)
	// DeleteAll empties the catalog. Only the promotion aggregate calls it.
	DeleteAll(dbc dbctx.Context) (int64, error)
	// LockForReplace blocks concurrent catalog writers until the transaction ends.
	LockForReplace(dbc dbctx.Context) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{
		db:  db,
		log: baseLog.With("repo", "ProductRepo"),
	}
}

func (r *productRepo) ListAll(dbc dbctx.Context) ([]*types.Product, error) {
	var out []*types.Product
	if err := dbc.DB(r.db).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.Product, int64, error) {
	transaction := dbc.DB(r.db)
	var total int64
	if err := transaction.Model(&types.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Product
	q := transaction.Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *productRepo) GetByProductID(dbc dbctx.Context, productID string) (*types.Product, error) {
	if productID == "" {
		return nil, nil
	}
	var p types.Product
	err := dbc.DB(r.db).
		Where("product_id = ?", productID).
		Limit(1).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.Product{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts products in slice order, so ids follow the given order.
func (r *productRepo) Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error) {
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	for _, p := range products {
		p.Normalize()
	}
	if err := dbc.DB(r.db).CreateInBatches(&products, createBatchSize).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) Update(dbc dbctx.Context, product *types.Product) error {
	if product == nil || product.ProductID == "" {
		return gorm.ErrRecordNotFound
	}
	product.Normalize()
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = time.Now().UTC()
	}
	res := dbc.DB(r.db).
		Model(&types.Product{}).
		Where("product_id = ?", product.ProductID).
		Updates(map[string]any{
			"name":           product.Name,
			"full_name":      product.FullName,
			"description":    product.Description,
			"brand":          product.Brand,
			"industry":       product.Industry,
			"chemistry":      product.Chemistry,
			"url":            product.URL,
			"image":          product.Image,
			"benefits":       product.Benefits,
			"applications":   product.Applications,
			"technical":      product.Technical,
			"sizing":         product.Sizing,
			"published":      product.Published,
			"benefits_count": product.BenefitsCount,
			"last_edited":    product.LastEdited,
			"updated_at":     product.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) DeleteByProductID(dbc dbctx.Context, productID string) (int64, error) {
	if productID == "" {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Where("product_id = ?", productID).
		Delete(&types.Product{})
	return res.RowsAffected, res.Error
}

func (r *productRepo) DeleteAll(dbc dbctx.Context) (int64, error) {
	if !dbc.InTx() {
		return 0, ErrTxRequired
	}
	res := dbc.DB(r.db).
		Where("1 = 1").
		Delete(&types.Product{})
	if res.Error != nil {
		return 0, res.Error
	}
	r.log.Debug("catalog cleared", "rows", res.RowsAffected)
	return res.RowsAffected, nil
}

// LockForReplace takes a table lock on Postgres. SQLite already serializes
// writers on the database lock, so it is a no-op there.
func (r *productRepo) LockForReplace(dbc dbctx.Context) error {
	if !dbc.InTx() {
		return ErrTxRequired
	}
	if catalogdb.DriverOf(dbc.Tx) != catalogdb.DriverPostgres {
		return nil
	}
	return dbc.DB(r.db).Exec(`LOCK TABLE product IN SHARE ROW EXCLUSIVE MODE`).Error
}
