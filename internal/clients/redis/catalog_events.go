package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

const DefaultChannelPrefix = "sealant-catalog"

// CatalogEvent is the wire form of every catalog notification.
type CatalogEvent struct {
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

type CatalogEventBus interface {
	Publish(ctx context.Context, channel string, payload any) error
	// StartForwarder subscribes to the given channels (all catalog channels when
	// empty) and calls onEvent until ctx is done.
	StartForwarder(ctx context.Context, channels []string, onEvent func(ev CatalogEvent)) error
}

type catalogEventBus struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

func NewCatalogEventBus(rdb goredis.UniversalClient, prefix string, baseLog *logger.Logger) (CatalogEventBus, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if baseLog == nil {
		return nil, fmt.Errorf("logger required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &catalogEventBus{
		log:    baseLog.With("client", "CatalogEventBus"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (b *catalogEventBus) topic(channel string) string {
	return b.prefix + ":" + channel
}

func (b *catalogEventBus) Publish(ctx context.Context, channel string, payload any) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("catalog event bus not initialized")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return fmt.Errorf("channel required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(CatalogEvent{Channel: channel, Payload: body, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.topic(channel), raw).Err()
}

func (b *catalogEventBus) StartForwarder(ctx context.Context, channels []string, onEvent func(ev CatalogEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("catalog event bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	var sub *goredis.PubSub
	if len(channels) == 0 {
		sub = b.rdb.PSubscribe(ctx, b.prefix+":*")
	} else {
		topics := make([]string, 0, len(channels))
		for _, ch := range channels {
			if ch = strings.TrimSpace(ch); ch != "" {
				topics = append(topics, b.topic(ch))
			}
		}
		sub = b.rdb.Subscribe(ctx, topics...)
	}

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev CatalogEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad catalog event payload", "topic", m.Channel, "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()

	return nil
}
