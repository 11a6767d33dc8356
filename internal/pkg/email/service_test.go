package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(&Config{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		FromEmail: "noreply@example.com",
		FromName:  "Chronflow",
	})
}

func TestRenderScheduledTemplate(t *testing.T) {
	svc := newTestService()

	html, err := svc.Render("scheduled", TemplateData{
		"Subject":      "Weekly digest",
		"Body":         "Your digest is ready.",
		"ScheduleName": "weekly digest",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Weekly digest")
	assert.Contains(t, html, "Your digest is ready.")
	assert.Contains(t, html, `Sent by schedule "weekly digest"`)
}

func TestRenderScheduledTemplateWithoutScheduleName(t *testing.T) {
	svc := newTestService()

	html, err := svc.Render("scheduled", TemplateData{"Subject": "Ping"})
	require.NoError(t, err)
	assert.Contains(t, html, "Ping")
	assert.NotContains(t, html, "Sent by schedule")
}

func TestRenderScheduleFailedTemplate(t *testing.T) {
	svc := newTestService()

	html, err := svc.Render("schedule_failed", TemplateData{
		"ScheduleName": "nightly backup",
		"ErrorMessage": "connection refused",
		"RanAt":        "2024-06-01T09:00:00Z",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "nightly backup")
	assert.Contains(t, html, "connection refused")
}

func TestRenderUnknownTemplate(t *testing.T) {
	svc := newTestService()

	_, err := svc.Render("welcome", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBuildMessageMultipart(t *testing.T) {
	svc := newTestService()

	msg := string(svc.buildMessage(&Email{
		To:       []string{"ops@example.com"},
		Subject:  "Report",
		Body:     "plain text",
		HTMLBody: "<p>html</p>",
	}))

	assert.Contains(t, msg, "From: Chronflow <noreply@example.com>")
	assert.Contains(t, msg, "To: ops@example.com")
	assert.Contains(t, msg, "Content-Type: multipart/alternative")
	assert.Contains(t, msg, "plain text")
	assert.Contains(t, msg, "<p>html</p>")
}

func TestBuildMessagePlainOnly(t *testing.T) {
	svc := newTestService()

	msg := string(svc.buildMessage(&Email{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Hello",
		Body:    "just text",
	}))

	assert.Contains(t, msg, "To: a@example.com, b@example.com")
	assert.Contains(t, msg, `Content-Type: text/plain; charset="utf-8"`)
	assert.False(t, strings.Contains(msg, "multipart"))
}
