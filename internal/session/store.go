// internal/session/store.go
package session

import (
	"context"
	"errors"

	"acadezone-chatbot/internal/models"
)

// ErrNotFound is returned when no conversation exists for a session id.
var ErrNotFound = errors.New("session not found")

// Store keeps one Conversation per session id. The lifetime policy is
// explicit: entries live until the configured TTL elapses, or forever
// when the TTL is zero.
type Store interface {
	Get(ctx context.Context, sessionID string) (*models.Conversation, error)
	Save(ctx context.Context, conv *models.Conversation) error
	Delete(ctx context.Context, sessionID string) error
}
