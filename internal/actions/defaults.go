package actions

import (
	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/domain/repositories"
	"github.com/chronflow/chronflow/internal/pkg/queue"
	pkgredis "github.com/chronflow/chronflow/internal/pkg/redis"
)

// NewDefaultRegistry wires the built-in action handlers.
func NewDefaultRegistry(
	tasks *repositories.TaskRecordRepository,
	queueClient *queue.Client,
	redisClient *pkgredis.Client,
) *Registry {
	registry := NewRegistry()
	registry.Register(models.ActionTaskCreate, NewTaskCreator(tasks))
	registry.Register(models.ActionNotificationSend, NewNotificationSender(queueClient, redisClient))
	registry.Register(models.ActionEmailSend, NewEmailSender(queueClient))
	return registry
}
