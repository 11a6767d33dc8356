package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronflow/chronflow/internal/domain/models"
)

func TestRegistryDispatchesByType(t *testing.T) {
	registry := NewRegistry()

	var got models.JSON
	registry.Register(models.ActionEmailSend, HandlerFunc(func(ctx context.Context, params models.JSON) error {
		got = params
		return nil
	}))

	action := models.Action{
		Type:   models.ActionEmailSend,
		Params: models.JSON{"to": "ops@example.com"},
	}
	owner := models.JSON{"schedule_id": "abc", "project_id": "def"}

	err := registry.Invoke(context.Background(), action, owner)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", got["to"])
	assert.Equal(t, "abc", got["schedule_id"])
	assert.Equal(t, "def", got["project_id"])
}

func TestRegistryUnknownAction(t *testing.T) {
	registry := NewRegistry()
	err := registry.Invoke(context.Background(), models.Action{Type: "webhook.call"}, nil)
	assert.ErrorIs(t, err, models.ErrUnknownAction)
}

func TestMergeParamsActionWinsOnCollision(t *testing.T) {
	params := models.JSON{"title": "from action", "kind": "report"}
	owner := models.JSON{"title": "from owner", "schedule_id": "abc"}

	merged := mergeParams(params, owner)
	assert.Equal(t, "from action", merged["title"])
	assert.Equal(t, "report", merged["kind"])
	assert.Equal(t, "abc", merged["schedule_id"])
}
