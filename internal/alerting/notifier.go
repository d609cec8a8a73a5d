// internal/alerting/notifier.go
package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	"compliance-engine/internal/common/config"
	"compliance-engine/internal/common/errors"
	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/models"
)

// Interfaces for mocking the AWS clients.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Alert is the record of one dispatched notification.
type Alert struct {
	ID        string `json:"id"`
	Channel   string `json:"channel"` // email, sms
	Sent      bool   `json:"sent"`
	SentAt    string `json:"sentAt"`
	RiskLevel string `json:"riskLevel"`
}

// Notifier sends email/SMS alerts for screening results that reach the
// configured risk level. Both channels are optional; a Notifier with neither
// enabled is a quiet no-op, which keeps caller code unconditional.
type Notifier struct {
	config    config.AlertsConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

// New creates a Notifier with real AWS clients. Clients are only constructed
// for enabled channels.
func New(ctx context.Context, cfg config.AlertsConfig, log logger.Logger) (*Notifier, error) {
	n := &Notifier{
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"component": "notifier"}),
	}

	if !cfg.Email.Enabled && !cfg.SMS.Enabled {
		return n, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.Email.Enabled {
		n.sesClient = ses.NewFromConfig(awsCfg)
	}
	if cfg.SMS.Enabled {
		n.snsClient = sns.NewFromConfig(awsCfg)
	}
	return n, nil
}

// NewWithClients creates a Notifier with injected clients.
func NewWithClients(cfg config.AlertsConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config:    cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// NotifyScreening dispatches alerts for one screening result. Results below
// the configured risk level produce no alerts. SMS is reserved for CRITICAL
// regardless of the email threshold.
func (n *Notifier) NotifyScreening(ctx context.Context, result *models.ScreeningResult) ([]Alert, error) {
	if result.Status != models.ScreeningOK || !result.MatchFound {
		return nil, nil
	}
	if !levelReaches(result.RiskLevel, models.RiskLevel(n.config.MinRiskLevel)) {
		return nil, nil
	}

	subject := fmt.Sprintf("[%s] Watchlist hit for %q", result.RiskLevel, result.Query)
	body := formatScreeningAlert(result)
	sentAt := time.Now().UTC().Format(time.RFC3339)

	var alerts []Alert

	if n.config.Email.Enabled && n.sesClient != nil {
		alert := Alert{
			ID: uuid.New().String(), Channel: "email",
			SentAt: sentAt, RiskLevel: string(result.RiskLevel),
		}
		if err := n.sendEmail(ctx, subject, body); err != nil {
			n.logger.Error("email alert failed", map[string]interface{}{
				"query": result.Query,
				"error": err.Error(),
			})
			alerts = append(alerts, alert)
			return alerts, errors.NewAlertSendFailedError("email", err)
		}
		alert.Sent = true
		alerts = append(alerts, alert)
	}

	if n.config.SMS.Enabled && n.snsClient != nil && result.RiskLevel == models.RiskCritical {
		alert := Alert{
			ID: uuid.New().String(), Channel: "sms",
			SentAt: sentAt, RiskLevel: string(result.RiskLevel),
		}
		if err := n.sendSMS(ctx, subject); err != nil {
			n.logger.Error("SMS alert failed", map[string]interface{}{
				"query": result.Query,
				"error": err.Error(),
			})
			alerts = append(alerts, alert)
			return alerts, errors.NewAlertSendFailedError("sms", err)
		}
		alert.Sent = true
		alerts = append(alerts, alert)
	}

	return alerts, nil
}

func (n *Notifier) sendEmail(ctx context.Context, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{n.config.Email.ToEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.Email.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(n.config.SMS.PhoneNumber),
		Message:     aws.String(message),
	})
	return err
}

func formatScreeningAlert(result *models.ScreeningResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Screening of %q (%s) matched %d watchlist entr", result.Query, result.EntityType, len(result.Matches))
	if len(result.Matches) == 1 {
		b.WriteString("y")
	} else {
		b.WriteString("ies")
	}
	fmt.Fprintf(&b, " with highest score %.2f (%s)\n\n", result.HighestScore, result.RiskLevel)

	for _, m := range result.Matches {
		fmt.Fprintf(&b, "- %s (%s, %s) matched on %q, score %.2f\n",
			m.EntityName, m.ListName, m.MatchType, m.MatchedOn, m.SimilarityScore)
	}
	fmt.Fprintf(&b, "\nScreened at %s\n", result.ScreenedAt)
	return b.String()
}

// levelReaches reports whether level is at or above min in the risk ordering.
func levelReaches(level, min models.RiskLevel) bool {
	order := map[models.RiskLevel]int{
		models.RiskMinimal:  0,
		models.RiskLow:      1,
		models.RiskMedium:   2,
		models.RiskHigh:     3,
		models.RiskCritical: 4,
	}
	minRank, ok := order[min]
	if !ok {
		minRank = order[models.RiskHigh]
	}
	return order[level] >= minRank
}
