package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/observability"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
	Guard  StatusGuard
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Guard.db == nil {
		d.Guard = NewStatusGuard(d.DB)
	}
	return d
}

type txMode int

const (
	txDefault txMode = iota
	txSnapshot
)

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	return execute(ctx, deps, op, txDefault, fn)
}

// executeSnapshotWrite is executeWrite for flows that must read a consistent
// view of several tables before writing.
func executeSnapshotWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	return execute(ctx, deps, op, txSnapshot, fn)
}

func execute(ctx context.Context, deps BaseDeps, op string, mode txMode, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}

	ctx, span := observability.Tracer().Start(ctx, op)
	defer span.End()

	var err error
	if mode == txSnapshot {
		err = deps.Runner.InSnapshotTx(ctx, fn)
	} else {
		err = deps.Runner.InTx(ctx, fn)
	}
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
		span.RecordError(mapped)
		span.SetStatus(codes.Error, status)
	}
	span.SetAttributes(attribute.String("aggregate.status", status))
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
