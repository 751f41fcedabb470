package aggregates

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	catalogdb "github.com/yungbote/sealant-catalog-backend/internal/data/db"
	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
)

// TxRunner provides a shared transaction boundary primitive for aggregate writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
	// InSnapshotTx runs fn in a transaction whose reads all see one snapshot.
	InSnapshotTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return r.run(ctx, nil, fn)
}

// InSnapshotTx uses REPEATABLE READ on Postgres. SQLite transactions are
// already serializable.
func (r *gormTxRunner) InSnapshotTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	var opts *sql.TxOptions
	if catalogdb.DriverOf(r.db) == catalogdb.DriverPostgres {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	}
	return r.run(ctx, opts, fn)
}

func (r *gormTxRunner) run(ctx context.Context, opts *sql.TxOptions, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	body := func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	}
	if opts != nil {
		return r.db.WithContext(ctx).Transaction(body, opts)
	}
	return r.db.WithContext(ctx).Transaction(body)
}
