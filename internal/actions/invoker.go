package actions

import (
	"context"
	"fmt"

	"github.com/chronflow/chronflow/internal/domain/models"
)

// Invoker fires a schedule's bound action. Implementations return nil on
// success and an error carrying the structured failure otherwise; the
// executor records either outcome on the schedule.
type Invoker interface {
	Invoke(ctx context.Context, action models.Action, owner models.JSON) error
}

// Handler performs one action type. Params arrive already merged with the
// schedule's owner context.
type Handler interface {
	Invoke(ctx context.Context, params models.JSON) error
}

type HandlerFunc func(ctx context.Context, params models.JSON) error

func (f HandlerFunc) Invoke(ctx context.Context, params models.JSON) error {
	return f(ctx, params)
}

// Registry dispatches invocations by action type.
type Registry struct {
	handlers map[models.ActionType]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[models.ActionType]Handler)}
}

func (r *Registry) Register(t models.ActionType, h Handler) {
	r.handlers[t] = h
}

func (r *Registry) Invoke(ctx context.Context, action models.Action, owner models.JSON) error {
	handler, ok := r.handlers[action.Type]
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownAction, action.Type)
	}

	return handler.Invoke(ctx, mergeParams(action.Params, owner))
}

// mergeParams overlays the owner context on the action params. Params win on
// key collision; the scheduler never interprets either side.
func mergeParams(params, owner models.JSON) models.JSON {
	merged := make(models.JSON, len(params)+len(owner))
	for k, v := range owner {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	return merged
}
