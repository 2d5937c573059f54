package handlers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/cache"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/events"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/logger"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/realtime"
)

// Notification types pushed over the websocket.
const (
	NotifyApplicationReceived = "APPLICATION_RECEIVED"
	NotifyApplicationStatus   = "APPLICATION_STATUS"
	NotifyContractCreated     = "CONTRACT_CREATED"
	NotifyContractCompleted   = "CONTRACT_COMPLETED"
	NotifyPaymentReceived     = "PAYMENT_RECEIVED"
	NotifyTipReceived         = "TIP_RECEIVED"
)

type Notification struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Broadcaster runs the side effects of a committed mutation. Every step is
// best effort: failures are logged and never reach the caller.
type Broadcaster struct {
	DB     *gorm.DB
	Hub    *realtime.Hub
	Events events.Publisher
	Cache  *cache.Cache
}

func (b *Broadcaster) NotifyTalent(ctx context.Context, talentID uuid.UUID, kind string, data any) {
	b.notify(ctx, &models.Talent{}, talentID, kind, data)
}

func (b *Broadcaster) NotifyClient(ctx context.Context, clientID uuid.UUID, kind string, data any) {
	b.notify(ctx, &models.Client{}, clientID, kind, data)
}

func (b *Broadcaster) notify(ctx context.Context, profile any, profileID uuid.UUID, kind string, data any) {
	if b == nil || b.Hub == nil || b.DB == nil {
		return
	}
	var userIDs []uuid.UUID
	if err := b.DB.WithContext(ctx).Model(profile).Where("id = ?", profileID).Pluck("user_id", &userIDs).Error; err != nil {
		logger.FromCtx(ctx).Warn("resolve notification recipient", "profile_id", profileID, "err", err)
		return
	}
	for _, uid := range userIDs {
		b.Hub.SendToUser(ctx, uid, Notification{Type: kind, Data: data})
	}
}

func (b *Broadcaster) Publish(ctx context.Context, key string, v any) {
	if b == nil || b.Events == nil {
		return
	}
	if err := b.Events.PublishJSON(ctx, key, v); err != nil {
		logger.FromCtx(ctx).Warn("publish event", "key", key, "err", err)
	}
}

// Touch drops the cached dashboards of the given talent and client. Nil ids
// are skipped.
func (b *Broadcaster) Touch(ctx context.Context, talentID, clientID uuid.UUID) {
	if b == nil {
		return
	}
	var keys []string
	if talentID != uuid.Nil {
		keys = append(keys, cache.TalentDashboardKey(talentID))
	}
	if clientID != uuid.Nil {
		keys = append(keys, cache.ClientDashboardKey(clientID))
	}
	if err := b.Cache.Del(ctx, keys...); err != nil {
		logger.FromCtx(ctx).Warn("cache invalidation failed", "keys", keys, "err", err)
	}
}
