package services

import (
	"context"
	"time"

	"github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/backup"
	"github.com/yungbote/sealant-catalog-backend/internal/observability"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

const (
	ChannelCatalogPromoted      = "catalog.promoted"
	ChannelCatalogProductChange = "catalog.product_changed"
)

// CatalogEventEmitter delivers a JSON-encodable payload on a named channel.
type CatalogEventEmitter interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// =========================
// Catalog notifier
// =========================

// CatalogNotifier announces committed catalog changes. Delivery is best
// effort: failures are logged and counted, never returned.
type CatalogNotifier interface {
	CatalogPromoted(ctx context.Context, b *backup.Backup, restored, previous int)
	ProductChanged(ctx context.Context, action audit.Action, productID, actor string)
}

type catalogNotifier struct {
	emit    CatalogEventEmitter
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewCatalogNotifier(emit CatalogEventEmitter, baseLog *logger.Logger, metrics *observability.Metrics) CatalogNotifier {
	return &catalogNotifier{
		emit:    emit,
		log:     baseLog.With("service", "CatalogNotifier"),
		metrics: metrics,
	}
}

func (n *catalogNotifier) CatalogPromoted(ctx context.Context, b *backup.Backup, restored, previous int) {
	if n == nil || n.emit == nil || b == nil {
		return
	}
	n.publish(ctx, ChannelCatalogPromoted, map[string]any{
		"backup_id":         b.ID,
		"backup_name":       b.BackupName,
		"promoted_by":       b.PromotedBy,
		"products_restored": restored,
		"previous_count":    previous,
		"at":                time.Now().UTC(),
	})
}

func (n *catalogNotifier) ProductChanged(ctx context.Context, action audit.Action, productID, actor string) {
	if n == nil || n.emit == nil || productID == "" {
		return
	}
	n.publish(ctx, ChannelCatalogProductChange, map[string]any{
		"action":     string(action),
		"product_id": productID,
		"user_name":  actor,
		"at":         time.Now().UTC(),
	})
}

func (n *catalogNotifier) publish(ctx context.Context, channel string, payload map[string]any) {
	if err := n.emit.Publish(ctx, channel, payload); err != nil {
		n.metrics.IncCatalogEvent(channel, "error")
		n.log.Warn("catalog event publish failed", "channel", channel, "error", err)
		return
	}
	n.metrics.IncCatalogEvent(channel, "ok")
}

type noopCatalogNotifier struct{}

// NewNoopCatalogNotifier is used when no event transport is configured.
func NewNoopCatalogNotifier() CatalogNotifier { return noopCatalogNotifier{} }

func (noopCatalogNotifier) CatalogPromoted(context.Context, *backup.Backup, int, int)   {}
func (noopCatalogNotifier) ProductChanged(context.Context, audit.Action, string, string) {}
