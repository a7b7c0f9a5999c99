// internal/models/analytics.go
package models

import "time"

// ChatAnalytic is the analytics document maintained per chat session.
// Each update only sets the fields it owns, so writes are safe to retry
// and to arrive out of order.
type ChatAnalytic struct {
	SessionID         string     `json:"sessionId"`
	UserID            string     `json:"userId,omitempty"`
	Department        string     `json:"department,omitempty"`
	PageURL           string     `json:"pageUrl,omitempty"`
	Referrer          string     `json:"referrer,omitempty"`
	MessageCount      int        `json:"messageCount"`
	Completed         bool       `json:"completed"`
	ResultedInContact bool       `json:"resultedInContact"`
	StartTime         time.Time  `json:"startTime"`
	EndTime           *time.Time `json:"endTime,omitempty"`
}
