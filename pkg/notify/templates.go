package notify

import (
	"bytes"
	"html/template"

	"fleet-tracking/internal/models"
)

// TemplateManager holds the parsed alert email templates.
type TemplateManager struct {
	AlertTmpl *template.Template
}

// NewTemplateManager parses all alert templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	alertTmpl, err := template.New("trackingAlert").Parse(trackingAlertTemplate)
	if err != nil {
		return nil, err
	}
	return &TemplateManager{AlertTmpl: alertTmpl}, nil
}

// GenerateTrackingAlertHTML executes the alert template for one event.
func (tm *TemplateManager) GenerateTrackingAlertHTML(event *models.TrackingEvent) (string, error) {
	var body bytes.Buffer
	if err := tm.AlertTmpl.Execute(&body, event); err != nil {
		return "", err
	}
	return body.String(), nil
}

// --- HTML Template Definitions ---

const trackingAlertTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Shipment {{.ShipmentID}}: {{.Type}}</h2>
  <p>{{.Note}}</p>
  {{if .Latitude}}
  <p>Last known position: {{.Latitude}}, {{.Longitude}}</p>
  {{end}}
  <p style="color: #888; font-size: 12px;">
    Emitted by {{.EmittedBy}} at {{.Timestamp.Format "2006-01-02 15:04:05 MST"}}
  </p>
</body>
</html>`
