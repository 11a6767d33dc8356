package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/pkg/config"
	"github.com/chronflow/chronflow/internal/pkg/metrics"
)

const (
	TypeEmailDelivery = "email:send"
	TypeNotification  = "notification:send"
)

// Delivery queues. Notifications ride the critical queue because their value
// decays fast; email tolerates the default queue's latency.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg *config.RedisConfig) *Client {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Client{client: client}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Email delivery
type EmailPayload struct {
	To      []string    `json:"to"`
	Subject string      `json:"subject"`
	Body    string      `json:"body,omitempty"`
	Data    models.JSON `json:"data,omitempty"`
}

func newEmailTask(payload EmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return asynq.NewTask(TypeEmailDelivery, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
		asynq.Retention(24*time.Hour),
	), nil
}

func (c *Client) EnqueueEmail(ctx context.Context, payload EmailPayload) (*asynq.TaskInfo, error) {
	task, err := newEmailTask(payload)
	if err != nil {
		return nil, err
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, err
	}
	metrics.RecordEnqueued(TypeEmailDelivery)
	return info, nil
}

// Notification fan-out
type NotificationPayload struct {
	Recipient string      `json:"recipient,omitempty"`
	Title     string      `json:"title,omitempty"`
	Message   string      `json:"message"`
	Data      models.JSON `json:"data,omitempty"`
}

func newNotificationTask(payload NotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return asynq.NewTask(TypeNotification, data,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
		asynq.Retention(24*time.Hour),
	), nil
}

func (c *Client) EnqueueNotification(ctx context.Context, payload NotificationPayload) (*asynq.TaskInfo, error) {
	task, err := newNotificationTask(payload)
	if err != nil {
		return nil, err
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, err
	}
	metrics.RecordEnqueued(TypeNotification)
	return info, nil
}
