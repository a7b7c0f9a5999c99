// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"acadezone-chatbot/internal/analytics"
	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/flow"
	"acadezone-chatbot/internal/models"
	"acadezone-chatbot/internal/session"
	"acadezone-chatbot/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoProcessor struct {
	lastInput string
}

func (p *echoProcessor) ProcessTurn(_ context.Context, conv *models.Conversation, input string) (*flow.Result, error) {
	p.lastInput = input
	conv.Step = models.StepSurname
	return &flow.Result{Messages: []flow.Message{{Text: "Teşekkürler! Soyadınızı da öğrenebilir miyim?"}}}, nil
}

type startEvents struct {
	analytics.NopSink
	sessions []string
	pageURLs []string
}

func (e *startEvents) SessionStart(_ context.Context, sessionID, pageURL, _ string) error {
	e.sessions = append(e.sessions, sessionID)
	e.pageURLs = append(e.pageURLs, pageURL)
	return nil
}

type serverEnv struct {
	router    http.Handler
	store     *session.MemoryStore
	processor *echoProcessor
	events    *startEvents
}

func newServerEnv(t *testing.T) *serverEnv {
	t.Helper()
	store := session.NewMemoryStore()
	processor := &echoProcessor{}
	events := &startEvents{}
	srv := New(processor, store, events, registry.DefaultSettings(), logger.NewNoOpLogger())
	return &serverEnv{
		router:    srv.Router(),
		store:     store,
		processor: processor,
		events:    events,
	}
}

func (env *serverEnv) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateSession(t *testing.T) {
	env := newServerEnv(t)

	rec := env.post(t, "/api/chat/session", `{"pageUrl":"https://acadezone.com/programs","referrer":""}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "bot", resp.Messages[0].Sender)
	assert.Contains(t, resp.Messages[0].Text, "adınızı öğrenebilir miyim")

	conv, err := env.store.Get(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StepWelcome, conv.Step)

	require.Len(t, env.events.sessions, 1)
	assert.Equal(t, resp.SessionID, env.events.sessions[0])
	assert.Equal(t, "https://acadezone.com/programs", env.events.pageURLs[0])
}

func TestCreateSessionEmptyBody(t *testing.T) {
	env := newServerEnv(t)

	rec := env.post(t, "/api/chat/session", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestMessageTurn(t *testing.T) {
	env := newServerEnv(t)
	conv := models.NewConversation("sess-1")
	require.NoError(t, env.store.Save(context.Background(), conv))

	rec := env.post(t, "/api/chat/message",
		`{"sessionId":"sess-1","event":{"kind":"text","value":"Ayşe"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp turnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "bot", resp.Messages[0].Sender)
	assert.Equal(t, "Ayşe", env.processor.lastInput)

	// mutated state was saved back
	saved, err := env.store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepSurname, saved.Step)
}

func TestMessageUnknownSession(t *testing.T) {
	env := newServerEnv(t)

	rec := env.post(t, "/api/chat/message",
		`{"sessionId":"missing","event":{"kind":"text","value":"Ayşe"}}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SESSION_NOT_FOUND", resp.Code)
}

func TestMessagePayloadValidation(t *testing.T) {
	env := newServerEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing event", `{"sessionId":"sess-1"}`},
		{"bad kind", `{"sessionId":"sess-1","event":{"kind":"gesture","value":"x"}}`},
		{"empty session id", `{"sessionId":"","event":{"kind":"text","value":"x"}}`},
		{"malformed json", `{"sessionId":`},
		{"extra field", `{"sessionId":"s","event":{"kind":"text","value":"x"},"admin":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.post(t, "/api/chat/message", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSettingsEndpoint(t *testing.T) {
	env := newServerEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/settings", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var settings registry.ChatbotSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, "AcadeZone Eğitim Asistanı", settings.Name)
	assert.True(t, settings.Active)
}

func TestHealthEndpoint(t *testing.T) {
	env := newServerEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
