package actions

import (
	"context"
	"fmt"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/pkg/queue"
)

// EmailSender handles email.send: it enqueues the message for the worker,
// which delivers over SMTP. Success means accepted by the queue, not
// delivered.
type EmailSender struct {
	queue *queue.Client
}

func NewEmailSender(queueClient *queue.Client) *EmailSender {
	return &EmailSender{queue: queueClient}
}

func (e *EmailSender) Invoke(ctx context.Context, params models.JSON) error {
	to := stringParam(params, "to", "")
	if to == "" {
		return fmt.Errorf("missing to parameter")
	}

	payload := queue.EmailPayload{
		To:      []string{to},
		Subject: stringParam(params, "subject", "Scheduled email"),
		Body:    stringParam(params, "body", ""),
		Data:    params,
	}

	if _, err := e.queue.EnqueueEmail(ctx, payload); err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}

	return nil
}
