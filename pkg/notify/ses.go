package notify

import (
	"context"
	"fmt"
	"log/slog"

	"fleet-tracking/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESNotifier emails tracking alerts to an operations inbox using AWS
// SES v2. It is intended for the low-volume alert events (deviations,
// delays, delivery), not for every position update.
type SESNotifier struct {
	client    *sesv2.Client
	templates *TemplateManager
	logger    *slog.Logger
	fromEmail string
	toEmail   string
}

// NewSESNotifier creates a sender for Amazon SES. Credentials load from
// the environment.
func NewSESNotifier(ctx context.Context, region, fromEmail, toEmail string, logger *slog.Logger) (*SESNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	templates, err := NewTemplateManager()
	if err != nil {
		return nil, err
	}
	return &SESNotifier{
		client:    sesv2.NewFromConfig(cfg),
		templates: templates,
		logger:    logger,
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}, nil
}

// alertworthy limits email noise to the events an operator acts on.
func alertworthy(t models.EventType) bool {
	switch t {
	case models.EventDelayed, models.EventException, models.EventDelivered:
		return true
	}
	return false
}

// Notify sends the event as an alert email via the AWS SES v2 API.
func (s *SESNotifier) Notify(ctx context.Context, event *models.TrackingEvent) error {
	if !alertworthy(event.Type) {
		return nil
	}

	subject := fmt.Sprintf("[tracking] shipment %s: %s", event.ShipmentID, event.Type)
	htmlBody, err := s.templates.GenerateTrackingAlertHTML(event)
	if err != nil {
		return fmt.Errorf("notify.SESNotifier template: %w", err)
	}
	textBody := fmt.Sprintf("Shipment %s: %s at %s. %s",
		event.ShipmentID, event.Type, event.Timestamp.Format("2006-01-02 15:04:05 MST"), event.Note)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: &s.fromEmail,
		Destination: &types.Destination{
			ToAddresses: []string{s.toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    &subject,
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    &textBody,
						Charset: aws.String("UTF-8"),
					},
					Html: &types.Content{
						Data:    &htmlBody,
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		s.logger.Error("failed to send alert email via SES", "shipment_id", event.ShipmentID, "error", err)
		return err
	}
	return nil
}
