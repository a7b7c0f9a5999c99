// internal/crm/pusher.go
package crm

import (
	"context"
	"fmt"

	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/common/zoho"
	"acadezone-chatbot/internal/models"
)

// LeadClient is the CRM surface the pusher needs.
type LeadClient interface {
	CreateLead(ctx context.Context, lead *zoho.Lead) (string, error)
}

// Pusher forwards chatbot leads to the CRM. Callers treat failures as
// non-fatal: the lead is already durable in Postgres, the CRM copy is for
// the sales pipeline.
type Pusher struct {
	client LeadClient
	logger logger.Logger
}

func NewPusher(client LeadClient, log logger.Logger) *Pusher {
	return &Pusher{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "crm"}),
	}
}

func (p *Pusher) PushLead(ctx context.Context, ident models.Identity, department string) error {
	leadID, err := p.client.CreateLead(ctx, &zoho.Lead{
		Email:      ident.Email,
		FirstName:  ident.Name,
		LastName:   ident.Surname,
		Phone:      ident.Phone,
		Source:     "chatbot",
		Department: department,
	})
	if err != nil {
		return fmt.Errorf("push lead to CRM: %w", err)
	}

	p.logger.Info("lead pushed to CRM", map[string]interface{}{
		"crmLeadId":  leadID,
		"department": department,
	})
	return nil
}
