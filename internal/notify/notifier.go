// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"
	"strings"

	"acadezone-chatbot/internal/common/config"
	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SalesNotifier alerts the sales team when a lead creates a contact request.
// Email goes out for every request; SMS only for application requests, those
// are the high priority ones. With both channels disabled the notifier is a
// no-op.
type SalesNotifier struct {
	config    config.NotificationConfig
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewSalesNotifier(cfg config.NotificationConfig, log logger.Logger) (*SalesNotifier, error) {
	n := &SalesNotifier{
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
	if !cfg.Email.Enabled && !cfg.SMS.Enabled {
		return n, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	n.sesClient = ses.NewFromConfig(awsCfg)
	n.snsClient = sns.NewFromConfig(awsCfg)
	return n, nil
}

// NewSalesNotifierWithClients injects prebuilt AWS clients, used in tests.
func NewSalesNotifierWithClients(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *SalesNotifier {
	return &SalesNotifier{
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

func (n *SalesNotifier) NotifyContactRequest(ctx context.Context, ident models.Identity, department string, kind models.ContactRequestKind) error {
	notificationID := uuid.New().String()
	data := map[string]interface{}{
		"name":       ident.Name,
		"surname":    ident.Surname,
		"email":      ident.Email,
		"phone":      ident.Phone,
		"department": department,
	}

	template, exists := templates[kind]
	if !exists {
		return fmt.Errorf("no template for contact request kind: %s", kind)
	}

	subject := renderTemplate(template.subject, data)
	body := renderTemplate(template.body, data)

	if n.config.Email.Enabled && n.config.Email.SalesTeam != "" {
		if err := n.sendEmail(ctx, n.config.Email.SalesTeam, subject, body); err != nil {
			return fmt.Errorf("send sales email: %w", err)
		}
	}

	if n.config.SMS.Enabled && n.config.SMS.SalesPhone != "" && kind == models.ContactRequestApplication {
		if err := n.sendSMS(ctx, n.config.SMS.SalesPhone, body); err != nil {
			return fmt.Errorf("send sales SMS: %w", err)
		}
	}

	n.logger.Info("sales notification sent", map[string]interface{}{
		"notificationId": notificationID,
		"kind":           string(kind),
	})
	return nil
}

func (n *SalesNotifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.Email.FromEmail),
	})
	return err
}

func (n *SalesNotifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

type notificationTemplate struct {
	subject string
	body    string
}

var templates = map[models.ContactRequestKind]notificationTemplate{
	models.ContactRequestInfo: {
		subject: "Yeni bilgi talebi: {{name}} {{surname}}",
		body: "Chatbot üzerinden yeni bir bilgi talebi alındı.\n" +
			"Ad Soyad: {{name}} {{surname}}\n" +
			"E-posta: {{email}}\nTelefon: {{phone}}\nBölüm: {{department}}",
	},
	models.ContactRequestApplication: {
		subject: "Yeni başvuru talebi: {{name}} {{surname}}",
		body: "Chatbot üzerinden yeni bir başvuru talebi alındı.\n" +
			"Ad Soyad: {{name}} {{surname}}\n" +
			"E-posta: {{email}}\nTelefon: {{phone}}\nBölüm: {{department}}",
	},
}

// Simplified template rendering with placeholder removal for missing values
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Remove any remaining placeholders (missing values)
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
