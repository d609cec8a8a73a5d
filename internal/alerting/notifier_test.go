// internal/alerting/notifier_test.go
package alerting

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-engine/internal/common/config"
	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	return &ses.SendEmailOutput{}, m.err
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	return &sns.PublishOutput{}, m.err
}

func alertsConfig(email, sms bool) config.AlertsConfig {
	cfg := config.AlertsConfig{MinRiskLevel: "HIGH"}
	cfg.Email.Enabled = email
	cfg.Email.FromEmail = "alerts@example.com"
	cfg.Email.ToEmail = "compliance@example.com"
	cfg.SMS.Enabled = sms
	cfg.SMS.PhoneNumber = "+15550100"
	return cfg
}

func screeningResult(level models.RiskLevel, score float64) *models.ScreeningResult {
	return &models.ScreeningResult{
		Query:        "John Doe",
		EntityType:   models.EntityIndividual,
		Status:       models.ScreeningOK,
		MatchFound:   true,
		HighestScore: score,
		RiskLevel:    level,
		Matches: []models.ScreeningMatch{
			{EntityName: "John Doe Sanctions Test", ListName: "OFAC SDN",
				MatchedOn: "John Doe Sanctions Test", SimilarityScore: score,
				MatchType: models.MatchSanctions},
		},
		ScreenedAt: "2026-08-27T10:00:00Z",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestNotifier_NotifyScreening_EmailOnHigh(t *testing.T) {
	sesMock := &mockSES{}
	n := NewWithClients(alertsConfig(true, false), sesMock, nil, logger.NewTestLogger(t))

	alerts, err := n.NotifyScreening(context.Background(), screeningResult(models.RiskHigh, 0.8))
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, "email", alerts[0].Channel)
	assert.True(t, alerts[0].Sent)

	require.Len(t, sesMock.inputs, 1)
	input := sesMock.inputs[0]
	assert.Equal(t, "alerts@example.com", *input.Source)
	assert.Equal(t, []string{"compliance@example.com"}, input.Destination.ToAddresses)
	assert.Contains(t, *input.Message.Subject.Data, "John Doe")
	assert.Contains(t, *input.Message.Body.Text.Data, "OFAC SDN")
}

func TestNotifier_NotifyScreening_SMSOnlyOnCritical(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewWithClients(alertsConfig(true, true), sesMock, snsMock, logger.NewTestLogger(t))

	_, err := n.NotifyScreening(context.Background(), screeningResult(models.RiskHigh, 0.8))
	require.NoError(t, err)
	assert.Empty(t, snsMock.inputs, "HIGH must not page anyone")

	alerts, err := n.NotifyScreening(context.Background(), screeningResult(models.RiskCritical, 0.95))
	require.NoError(t, err)
	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "+15550100", *snsMock.inputs[0].PhoneNumber)
	assert.Len(t, alerts, 2, "CRITICAL sends both email and SMS")
}

func TestNotifier_NotifyScreening_BelowThresholdIsQuiet(t *testing.T) {
	sesMock := &mockSES{}
	n := NewWithClients(alertsConfig(true, false), sesMock, nil, logger.NewTestLogger(t))

	alerts, err := n.NotifyScreening(context.Background(), screeningResult(models.RiskMedium, 0.55))
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Empty(t, sesMock.inputs)
}

func TestNotifier_NotifyScreening_IgnoresErrorAndNoMatchResults(t *testing.T) {
	sesMock := &mockSES{}
	n := NewWithClients(alertsConfig(true, false), sesMock, nil, logger.NewTestLogger(t))

	errorResult := screeningResult(models.RiskCritical, 0.95)
	errorResult.Status = models.ScreeningError
	alerts, err := n.NotifyScreening(context.Background(), errorResult)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	noMatch := screeningResult(models.RiskCritical, 0.95)
	noMatch.MatchFound = false
	alerts, err = n.NotifyScreening(context.Background(), noMatch)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestNotifier_NotifyScreening_SendFailureSurfaces(t *testing.T) {
	sesMock := &mockSES{err: errors.New("ses throttled")}
	n := NewWithClients(alertsConfig(true, false), sesMock, nil, logger.NewTestLogger(t))

	alerts, err := n.NotifyScreening(context.Background(), screeningResult(models.RiskHigh, 0.8))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALERT_SEND_FAILED")
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].Sent)
}

func TestNotifier_NotifyScreening_DisabledChannelsAreNoOp(t *testing.T) {
	n := NewWithClients(alertsConfig(false, false), nil, nil, logger.NewTestLogger(t))

	alerts, err := n.NotifyScreening(context.Background(), screeningResult(models.RiskCritical, 0.95))
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestLevelReaches(t *testing.T) {
	assert.True(t, levelReaches(models.RiskCritical, models.RiskHigh))
	assert.True(t, levelReaches(models.RiskHigh, models.RiskHigh))
	assert.False(t, levelReaches(models.RiskMedium, models.RiskHigh))
	assert.True(t, levelReaches(models.RiskHigh, ""), "unknown minimum falls back to HIGH")
}
