package email

const scheduledTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2937; max-width: 600px; margin: 0 auto;">
  <h2>{{.Subject}}</h2>
  <p>{{.Body}}</p>
  {{if .ScheduleName}}<p style="color: #6b7280; font-size: 13px;">Sent by schedule "{{.ScheduleName}}".</p>{{end}}
</body>
</html>`

const scheduleFailedTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2937; max-width: 600px; margin: 0 auto;">
  <h2>Schedule "{{.ScheduleName}}" failed</h2>
  <p>The last run of this schedule did not complete.</p>
  <pre style="background: #f3f4f6; padding: 12px; border-radius: 4px;">{{.ErrorMessage}}</pre>
  <p style="color: #6b7280; font-size: 13px;">Ran at {{.RanAt}}.</p>
</body>
</html>`
