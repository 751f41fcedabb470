package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sealant-catalog-backend/internal/clients/redis"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

// Clients are optional. Both stay nil without REDIS_ADDR.
type Clients struct {
	Redis    *goredis.Client
	EventBus  redis.CatalogEventBus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Info("REDIS_ADDR not set; promotion lock is process-local and catalog events are disabled")
		return Clients{}, nil
	}

	rdb, err := redis.NewClient(ctx, redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis client: %w", err)
	}
	bus, err := redis.NewCatalogEventBus(rdb, cfg.RedisChannelPrefix, log)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init catalog event bus: %w", err)
	}
	return Clients{Redis: rdb, EventBus: bus}, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
