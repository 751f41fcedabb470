package aggregates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	catalogdb "github.com/yungbote/sealant-catalog-backend/internal/data/db"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

// ErrLockHeld is returned when another holder owns a non-blocking lock.
var ErrLockHeld = errors.New("lock held by another owner")

// Locker serializes a critical section. The returned release func must be
// called exactly once.
type Locker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// LocalLock is a one-slot semaphore for callers in the same process. Acquire
// waits until the slot frees up or ctx ends.
type LocalLock struct {
	sem chan struct{}
}

func NewLocalLock() *LocalLock {
	return &LocalLock{sem: make(chan struct{}, 1)}
}

func (l *LocalLock) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

const (
	defaultRedisLockTTL = 2 * time.Minute
	// PromotionLockKey names the catalog promotion lock in Redis.
	PromotionLockKey = "sealant-catalog:lock:promotion"
)

// Deletes the key only if it still holds our token.
var redisUnlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is a best-effort cross-process lock (SET NX PX + token-checked
// release). It does not wait: a held lock fails with ErrLockHeld.
type RedisLock struct {
	rdb redis.UniversalClient
	key string
	ttl time.Duration
	log *logger.Logger
}

func NewRedisLock(rdb redis.UniversalClient, key string, ttl time.Duration, baseLog *logger.Logger) *RedisLock {
	if strings.TrimSpace(key) == "" {
		key = PromotionLockKey
	}
	if ttl <= 0 {
		ttl = defaultRedisLockTTL
	}
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return &RedisLock{
		rdb: rdb,
		key: key,
		ttl: ttl,
		log: baseLog.With("lock", "RedisLock", "key", key),
	}
}

func (l *RedisLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func() {
		// The caller's ctx may already be done.
		relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisUnlockScript.Run(relCtx, l.rdb, []string{l.key}, token).Err(); err != nil {
			l.log.Warn("redis lock release failed", "error", err)
		}
	}, nil
}

// promotionAdvisoryKey is the pg_advisory lock id for catalog promotion.
const promotionAdvisoryKey int64 = 0x5ea1_c47a_1060

// tryAdvisoryXactLock takes a transaction-scoped advisory lock on Postgres.
// It reports true on other drivers.
func tryAdvisoryXactLock(dbc dbctx.Context, key int64) (bool, error) {
	if !dbc.InTx() || catalogdb.DriverOf(dbc.Tx) != catalogdb.DriverPostgres {
		return true, nil
	}
	var ok bool
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Raw("SELECT pg_try_advisory_xact_lock(?)", key).
		Scan(&ok).Error; err != nil {
		return false, err
	}
	return ok, nil
}
