package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/sealant-catalog-backend/internal/data/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/data/repos"
	repotest "github.com/yungbote/sealant-catalog-backend/internal/data/repos/testutil"
	"github.com/yungbote/sealant-catalog-backend/internal/observability"
)

type serviceEnv struct {
	db       *gorm.DB
	products repos.ProductRepo
	backups  repos.BackupRepo
	audits   repos.AuditLogRepo
	metrics  *observability.Metrics
	events   *recordingEmitter

	Audit   AuditService
	Backup  BackupService
	Product ProductService
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)

	env := &serviceEnv{
		db:       db,
		products: repos.NewProductRepo(db, log),
		backups:  repos.NewBackupRepo(db, log),
		audits:   repos.NewAuditLogRepo(db, log),
		metrics:  observability.New(),
		events:   &recordingEmitter{},
	}
	env.Audit = NewAuditService(log, env.audits, 0)
	notifier := NewCatalogNotifier(env.events, log, env.metrics)

	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewObservabilityHooks(env.metrics)}
	lifecycle := aggregates.NewBackupAggregate(aggregates.BackupAggregateDeps{
		Base:     base,
		Products: env.products,
		Backups:  env.backups,
		Audit:    env.Audit,
	})
	promotion := aggregates.NewPromotionAggregate(aggregates.PromotionAggregateDeps{
		Base:     base,
		Products: env.products,
		Backups:  env.backups,
		Audit:    env.Audit,
	})
	env.Backup = NewBackupService(log, BackupServiceDeps{
		Backups:   env.backups,
		Lifecycle: lifecycle,
		Promotion: promotion,
		Notifier:  notifier,
		Metrics:   env.metrics,
	})
	env.Product = NewProductService(db, log, env.products, env.Audit, notifier)
	return env
}

func (e *serviceEnv) scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

type publishedEvent struct {
	Channel string
	Payload any
}

type recordingEmitter struct {
	mu     sync.Mutex
	Fail   error
	Events []publishedEvent
}

func (r *recordingEmitter) Publish(_ context.Context, channel string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.Events = append(r.Events, publishedEvent{Channel: channel, Payload: payload})
	return nil
}

func (r *recordingEmitter) channels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, ev := range r.Events {
		out = append(out, ev.Channel)
	}
	return out
}

var errPublish = errors.New("publish failed")
