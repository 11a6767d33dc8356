package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/chronflow/chronflow/internal/pkg/config"
	"github.com/chronflow/chronflow/internal/pkg/email"
	"github.com/chronflow/chronflow/internal/pkg/queue"
	pkgredis "github.com/chronflow/chronflow/internal/pkg/redis"
)

// Worker consumes the delivery queues fed by the execution engine. Email
// delivery talks SMTP; notification delivery publishes to the recipient's
// channel so connected clients receive it.
type Worker struct {
	server *queue.Server
	email  *email.Service
	redis  *pkgredis.Client
}

func New(cfg *config.Config, redisClient *pkgredis.Client, concurrency int) *Worker {
	emailService := email.NewService(&email.Config{
		SMTPHost:     cfg.SMTP.Host,
		SMTPPort:     cfg.SMTP.Port,
		SMTPUser:     cfg.SMTP.Username,
		SMTPPassword: cfg.SMTP.Password,
		FromEmail:    cfg.SMTP.From,
		FromName:     cfg.SMTP.FromName,
		UseSTARTTLS:  true,
	})

	w := &Worker{
		server: queue.NewServer(&cfg.Redis, concurrency),
		email:  emailService,
		redis:  redisClient,
	}

	w.server.HandleFunc(queue.TypeEmailDelivery, w.handleEmail)
	w.server.HandleFunc(queue.TypeNotification, w.handleNotification)

	return w
}

func (w *Worker) Start() error {
	return w.server.Start()
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleEmail(ctx context.Context, task *asynq.Task) error {
	var payload queue.EmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email payload: %w", err)
	}

	// A payload with no body falls back to the built-in schedule
	// notification template.
	if payload.Body == "" {
		data := templateData(payload)
		if err := w.email.SendTemplate(ctx, "scheduled", payload.To, payload.Subject, data); err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
	} else {
		msg := &email.Email{
			To:      payload.To,
			Subject: payload.Subject,
			Body:    payload.Body,
		}
		if err := w.email.Send(ctx, msg); err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
	}

	log.Info().
		Strs("to", payload.To).
		Str("subject", payload.Subject).
		Msg("Email delivered")

	return nil
}

// templateData maps an email payload onto the fields the built-in
// templates understand.
func templateData(payload queue.EmailPayload) email.TemplateData {
	data := email.TemplateData{
		"Subject": payload.Subject,
	}
	if msg, ok := payload.Data["message"].(string); ok {
		data["Body"] = msg
	}
	if name, ok := payload.Data["schedule_name"].(string); ok {
		data["ScheduleName"] = name
	}
	return data
}

func (w *Worker) handleNotification(ctx context.Context, task *asynq.Task) error {
	var payload queue.NotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal notification payload: %w", err)
	}

	if w.redis != nil && payload.Recipient != "" {
		channel := fmt.Sprintf("chronflow:notifications:%s", payload.Recipient)
		if err := w.redis.PublishEvent(ctx, channel, task.Payload()); err != nil {
			return fmt.Errorf("failed to deliver notification: %w", err)
		}
	}

	log.Info().
		Str("recipient", payload.Recipient).
		Str("title", payload.Title).
		Msg("Notification delivered")

	return nil
}
