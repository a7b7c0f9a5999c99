// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	commonerrors "acadezone-chatbot/internal/common/errors"
	"acadezone-chatbot/internal/common/metrics"
	"acadezone-chatbot/internal/flow"
	"acadezone-chatbot/internal/models"
	"acadezone-chatbot/internal/session"

	"github.com/google/uuid"
)

type botMessage struct {
	Sender  string   `json:"sender"`
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

type sessionResponse struct {
	SessionID string       `json:"sessionId"`
	Messages  []botMessage `json:"messages"`
}

type turnResponse struct {
	Messages    []botMessage `json:"messages"`
	RedirectURL string       `json:"redirectUrl,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeAndValidate(r, createSessionSchema)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, commonerrors.ErrCodeValidationFailed, err.Error())
		return
	}

	sessionID := uuid.New().String()
	conv := models.NewConversation(sessionID)
	if err := s.sessions.Save(r.Context(), conv); err != nil {
		s.logger.Error("session save failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		s.writeError(w, http.StatusInternalServerError, commonerrors.ErrCodeSessionPersistFailed, "could not create session")
		return
	}

	pageURL, _ := payload["pageUrl"].(string)
	referrer, _ := payload["referrer"].(string)
	_ = s.events.SessionStart(r.Context(), sessionID, pageURL, referrer)
	metrics.ChatSessionsStarted.Inc()

	s.writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sessionID,
		Messages: []botMessage{
			{Sender: "bot", Text: s.settings.WelcomeMessage},
		},
	})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeAndValidate(r, messageSchema)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, commonerrors.ErrCodeValidationFailed, err.Error())
		return
	}

	sessionID := payload["sessionId"].(string)
	event := payload["event"].(map[string]interface{})
	input, _ := event["value"].(string)

	conv, err := s.sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, commonerrors.ErrCodeSessionNotFound, "session not found or expired")
			return
		}
		s.logger.Error("session load failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		s.writeError(w, http.StatusInternalServerError, commonerrors.ErrCodeSessionPersistFailed, "could not load session")
		return
	}

	stepBefore := string(conv.Step)
	turnStart := time.Now()
	result, err := s.engine.ProcessTurn(r.Context(), conv, input)
	if s.obs != nil {
		s.obs.RecordTurnProcessed(r.Context(), stepBefore)
		s.obs.RecordTurnDuration(r.Context(), time.Since(turnStart), stepBefore)
	}
	if err != nil {
		s.logger.Error("turn processing failed", map[string]interface{}{
			"sessionId": sessionID,
			"step":      string(conv.Step),
			"error":     err.Error(),
		})
		s.writeError(w, http.StatusInternalServerError, commonerrors.ErrCodeValidationFailed, "could not process message")
		return
	}

	if err := s.sessions.Save(r.Context(), conv); err != nil {
		s.logger.Error("session save failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		s.writeError(w, http.StatusInternalServerError, commonerrors.ErrCodeSessionPersistFailed, "could not save session")
		return
	}

	s.writeJSON(w, http.StatusOK, toTurnResponse(result))
}

func (s *Server) handleSettings(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.settings)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toTurnResponse(result *flow.Result) turnResponse {
	resp := turnResponse{RedirectURL: result.RedirectURL}
	for _, msg := range result.Messages {
		resp.Messages = append(resp.Messages, botMessage{
			Sender:  "bot",
			Text:    msg.Text,
			Options: msg.Options,
		})
	}
	return resp
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code commonerrors.ErrorCode, message string) {
	s.writeJSON(w, status, errorResponse{Code: string(code), Message: message})
}
