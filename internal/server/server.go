// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"acadezone-chatbot/internal/analytics"
	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/common/observability"
	"acadezone-chatbot/internal/flow"
	"acadezone-chatbot/internal/models"
	"acadezone-chatbot/internal/session"
	"acadezone-chatbot/pkg/registry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TurnProcessor runs one conversation turn.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, conv *models.Conversation, input string) (*flow.Result, error)
}

// Server exposes the chatbot over HTTP. It owns no conversation logic: it
// validates payloads, moves state in and out of the session store, and
// delegates to the flow engine.
type Server struct {
	engine   TurnProcessor
	sessions session.Store
	events   analytics.Sink
	settings *registry.ChatbotSettings
	obs      *observability.Observability
	logger   logger.Logger
}

func New(engine TurnProcessor, sessions session.Store, events analytics.Sink, settings *registry.ChatbotSettings, log logger.Logger) *Server {
	if events == nil {
		events = analytics.NopSink{}
	}
	return &Server{
		engine:   engine,
		sessions: sessions,
		events:   events,
		settings: settings,
		logger:   log.WithFields(map[string]interface{}{"component": "server"}),
	}
}

// WithObservability attaches the OpenTelemetry meters. Optional.
func (s *Server) WithObservability(obs *observability.Observability) *Server {
	s.obs = obs
	return s
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/session", s.handleCreateSession)
		r.Post("/message", s.handleMessage)
		r.Get("/settings", s.handleSettings)
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
