// internal/analytics/sink.go
package analytics

import (
	"context"
	"time"

	"acadezone-chatbot/internal/models"
)

// StepCompletedEvent carries the fields known when a flow step finishes.
// Optional fields are only written when set.
type StepCompletedEvent struct {
	SessionID    string
	UserID       string
	Department   string
	MessageCount int
}

// SessionCompletedEvent marks a session outcome. Nil fields are left
// untouched in the stored document so each outcome fact can arrive on its
// own turn.
type SessionCompletedEvent struct {
	SessionID         string
	Completed         *bool
	ResultedInContact *bool
	EndTime           *time.Time
}

// Bool is a convenience for building partial outcome events.
func Bool(v bool) *bool { return &v }

// Sink accepts chat analytics events. Callers treat every method as
// fire-and-forget: failures are logged and swallowed, never surfaced to
// the conversation.
type Sink interface {
	SessionStart(ctx context.Context, sessionID, pageURL, referrer string) error
	StepCompleted(ctx context.Context, event StepCompletedEvent) error
	SessionCompleted(ctx context.Context, event SessionCompletedEvent) error
	ContactRequestCreated(ctx context.Context, userID string, kind models.ContactRequestKind) error
}

// NopSink discards every event. Used when analytics are disabled.
type NopSink struct{}

func (NopSink) SessionStart(context.Context, string, string, string) error { return nil }
func (NopSink) StepCompleted(context.Context, StepCompletedEvent) error    { return nil }
func (NopSink) SessionCompleted(context.Context, SessionCompletedEvent) error {
	return nil
}
func (NopSink) ContactRequestCreated(context.Context, string, models.ContactRequestKind) error {
	return nil
}
