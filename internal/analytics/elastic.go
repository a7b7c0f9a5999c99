// internal/analytics/elastic.go
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"acadezone-chatbot/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

// ElasticSink maintains one analytics document per session in Elasticsearch,
// keyed by session id so partial updates merge instead of duplicating.
type ElasticSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticSink(client *elasticsearch.Client, index string) *ElasticSink {
	return &ElasticSink{client: client, index: index}
}

func (s *ElasticSink) SessionStart(ctx context.Context, sessionID, pageURL, referrer string) error {
	doc := models.ChatAnalytic{
		SessionID: sessionID,
		PageURL:   pageURL,
		Referrer:  referrer,
		StartTime: time.Now().UTC(),
	}
	return s.upsert(ctx, sessionID, doc)
}

func (s *ElasticSink) StepCompleted(ctx context.Context, event StepCompletedEvent) error {
	doc := map[string]interface{}{}
	if event.UserID != "" {
		doc["userId"] = event.UserID
	}
	if event.Department != "" {
		doc["department"] = event.Department
	}
	if event.MessageCount > 0 {
		doc["messageCount"] = event.MessageCount
	}
	if len(doc) == 0 {
		return nil
	}
	return s.upsert(ctx, event.SessionID, doc)
}

func (s *ElasticSink) SessionCompleted(ctx context.Context, event SessionCompletedEvent) error {
	doc := map[string]interface{}{}
	if event.Completed != nil {
		doc["completed"] = *event.Completed
	}
	if event.ResultedInContact != nil {
		doc["resultedInContact"] = *event.ResultedInContact
	}
	if event.EndTime != nil {
		doc["endTime"] = event.EndTime.UTC()
	}
	if len(doc) == 0 {
		return nil
	}
	return s.upsert(ctx, event.SessionID, doc)
}

func (s *ElasticSink) ContactRequestCreated(ctx context.Context, userID string, kind models.ContactRequestKind) error {
	doc := map[string]interface{}{
		"eventType": "contact_request",
		"userId":    userID,
		"kind":      string(kind),
		"createdAt": time.Now().UTC(),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode contact request event: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithDocumentID(uuid.New().String()),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index contact request event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index contact request event: %s", res.Status())
	}
	return nil
}

// upsert merges the partial document into the per-session analytics record.
func (s *ElasticSink) upsert(ctx context.Context, sessionID string, doc interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"doc":           doc,
		"doc_as_upsert": true,
	})
	if err != nil {
		return fmt.Errorf("encode analytics update: %w", err)
	}

	res, err := s.client.Update(
		s.index,
		sessionID,
		bytes.NewReader(body),
		s.client.Update.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("update analytics document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("update analytics document: %s", res.Status())
	}
	return nil
}
