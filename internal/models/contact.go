// internal/models/contact.go
package models

import "time"

// ContactRequestKind distinguishes an information request from an application.
type ContactRequestKind string

const (
	ContactRequestInfo        ContactRequestKind = "info"
	ContactRequestApplication ContactRequestKind = "application"
)

// Valid reports whether k is a known contact request kind.
func (k ContactRequestKind) Valid() bool {
	return k == ContactRequestInfo || k == ContactRequestApplication
}

// ContactRequest records a lead's expressed intent for sales follow-up.
type ContactRequest struct {
	ID        string             `json:"id" db:"id"`
	UserID    string             `json:"userId" db:"user_id"`
	Kind      ContactRequestKind `json:"kind" db:"kind"`
	Status    string             `json:"status" db:"status"`
	CreatedAt time.Time          `json:"createdAt" db:"created_at"`
}
