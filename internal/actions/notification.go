package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/pkg/queue"
	pkgredis "github.com/chronflow/chronflow/internal/pkg/redis"
)

// NotificationChannel is the redis pub/sub channel live clients subscribe to.
const NotificationChannel = "chronflow:notifications"

// NotificationSender handles notification.send: it enqueues delivery to the
// worker and publishes the event for connected clients. The enqueue is the
// authoritative effect; a publish failure alone does not fail the firing.
type NotificationSender struct {
	queue *queue.Client
	redis *pkgredis.Client
}

func NewNotificationSender(queueClient *queue.Client, redisClient *pkgredis.Client) *NotificationSender {
	return &NotificationSender{queue: queueClient, redis: redisClient}
}

func (n *NotificationSender) Invoke(ctx context.Context, params models.JSON) error {
	payload := queue.NotificationPayload{
		Recipient: stringParam(params, "recipient", ""),
		Title:     stringParam(params, "title", ""),
		Message:   stringParam(params, "message", "Scheduled notification"),
		Data:      params,
	}

	if _, err := n.queue.EnqueueNotification(ctx, payload); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	if n.redis != nil {
		event, err := json.Marshal(payload)
		if err == nil {
			if err := n.redis.PublishEvent(ctx, NotificationChannel, event); err != nil {
				log.Warn().Err(err).Msg("Failed to publish notification event")
			}
		}
	}

	return nil
}
