package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/pkg/queue"
)

func TestTemplateDataMapsPayloadFields(t *testing.T) {
	data := templateData(queue.EmailPayload{
		Subject: "Weekly summary",
		Data: models.JSON{
			"message":       "All systems nominal",
			"schedule_name": "weekly summary",
			"schedule_id":   "ignored",
		},
	})

	assert.Equal(t, "Weekly summary", data["Subject"])
	assert.Equal(t, "All systems nominal", data["Body"])
	assert.Equal(t, "weekly summary", data["ScheduleName"])
	assert.NotContains(t, data, "schedule_id")
}

func TestTemplateDataTolerantOfMissingFields(t *testing.T) {
	data := templateData(queue.EmailPayload{Subject: "Ping"})

	assert.Equal(t, "Ping", data["Subject"])
	assert.NotContains(t, data, "Body")
	assert.NotContains(t, data, "ScheduleName")
}
