// internal/identity/repository.go
package identity

import (
	"context"

	"acadezone-chatbot/internal/models"
)

// Repository persists the lead identity, qualification session and contact
// requests. All writes are upsert-style: safe to retry, each call only sets
// the fields it owns.
type Repository interface {
	// UpsertUser stores the collected identity, ensures the department
	// record exists, and returns the backend user id.
	UpsertUser(ctx context.Context, identity models.Identity, department string) (string, error)

	// UpdateSession stores the qualification answers for a user.
	UpdateSession(ctx context.Context, userID, department string, answers map[string]string) error

	// CreateContactRequest records a lead's expressed intent (info or
	// application) for sales follow-up.
	CreateContactRequest(ctx context.Context, userID string, kind models.ContactRequestKind) (string, error)
}
