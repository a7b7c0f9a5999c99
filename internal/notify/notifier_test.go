// internal/notify/notifier_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	"acadezone-chatbot/internal/common/config"
	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	return &ses.SendEmailOutput{}, m.err
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	return &sns.PublishOutput{}, m.err
}

func testConfig() config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "noreply@acadezone.com"
	cfg.Email.SalesTeam = "sales@acadezone.com"
	cfg.SMS.Enabled = true
	cfg.SMS.SalesPhone = "+905551112233"
	return cfg
}

func testLead() models.Identity {
	return models.Identity{Name: "Ayşe", Surname: "Yılmaz", Email: "ayse@test.com", Phone: "05551234567"}
}

func TestInfoRequestSendsEmailOnly(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewSalesNotifierWithClients(testConfig(), sesMock, snsMock, logger.NewNoOpLogger())

	err := n.NotifyContactRequest(context.Background(), testLead(), "Psikoloji", models.ContactRequestInfo)
	require.NoError(t, err)

	require.Len(t, sesMock.inputs, 1)
	assert.Empty(t, snsMock.inputs)

	input := sesMock.inputs[0]
	assert.Equal(t, []string{"sales@acadezone.com"}, input.Destination.ToAddresses)
	assert.Contains(t, *input.Message.Subject.Data, "bilgi talebi")
	assert.Contains(t, *input.Message.Body.Text.Data, "Ayşe Yılmaz")
	assert.Contains(t, *input.Message.Body.Text.Data, "Psikoloji")
}

func TestApplicationRequestSendsEmailAndSMS(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewSalesNotifierWithClients(testConfig(), sesMock, snsMock, logger.NewNoOpLogger())

	err := n.NotifyContactRequest(context.Background(), testLead(), "Psikoloji", models.ContactRequestApplication)
	require.NoError(t, err)

	require.Len(t, sesMock.inputs, 1)
	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "+905551112233", *snsMock.inputs[0].PhoneNumber)
	assert.Contains(t, *snsMock.inputs[0].Message, "başvuru talebi")
}

func TestDisabledChannelsSendNothing(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	cfg := testConfig()
	cfg.Email.Enabled = false
	cfg.SMS.Enabled = false
	n := NewSalesNotifierWithClients(cfg, sesMock, snsMock, logger.NewNoOpLogger())

	err := n.NotifyContactRequest(context.Background(), testLead(), "Psikoloji", models.ContactRequestApplication)
	require.NoError(t, err)
	assert.Empty(t, sesMock.inputs)
	assert.Empty(t, snsMock.inputs)
}

func TestEmailFailurePropagates(t *testing.T) {
	sesMock := &mockSES{err: errors.New("ses throttled")}
	n := NewSalesNotifierWithClients(testConfig(), sesMock, &mockSNS{}, logger.NewNoOpLogger())

	err := n.NotifyContactRequest(context.Background(), testLead(), "Psikoloji", models.ContactRequestInfo)
	assert.Error(t, err)
}

func TestRenderTemplateRemovesMissingPlaceholders(t *testing.T) {
	out := renderTemplate("Merhaba {{name}}, bölüm: {{missing}}", map[string]interface{}{"name": "Ayşe"})
	assert.Equal(t, "Merhaba Ayşe, bölüm: ", out)
}
