package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/sealant-catalog-backend/internal/data/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
)

// InjectedTxRunner is a test helper for aggregate integration tests.
// With DB nil the body runs without a transaction; with DB set it runs inside
// a real GORM transaction that is rolled back whenever a failure is injected.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
	SnapshotCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InSnapshotTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.SnapshotCalls++
	r.mu.Unlock()
	return r.InTx(ctx, fn)
}

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	db := r.DB
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.inc(&r.RollbackCalls)
		return failBeforeBody
	}
	if fn == nil {
		r.inc(&r.CommitCalls)
		return nil
	}

	body := func(dbc dbctx.Context) error {
		if err := fn(dbc); err != nil {
			return err
		}
		// Returning the commit failure from inside the transaction rolls it back.
		return failCommit
	}

	var err error
	if db != nil {
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return body(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.inc(&r.RollbackCalls)
		return err
	}
	r.inc(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) inc(counter *int) {
	r.mu.Lock()
	*counter++
	r.mu.Unlock()
}
