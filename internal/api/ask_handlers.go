package api

import (
	"encoding/json"
	"net/http"

	"candleboard/internal/services/analyst"
	"candleboard/internal/session"
	"candleboard/pkg/errors"
	"candleboard/pkg/logger"
)

// AskHandler exposes the analyst with a per-session display transcript.
type AskHandler struct {
	analyst  *analyst.Service
	sessions *session.Store
	log      *logger.Logger
}

// NewAskHandler creates the analyst handler.
func NewAskHandler(svc *analyst.Service, sessions *session.Store, log *logger.Logger) *AskHandler {
	return &AskHandler{
		analyst:  svc,
		sessions: sessions,
		log:      log.With("handler", "ask"),
	}
}

type askRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type askResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// HandleAsk answers one question. The call blocks until the provider
// responds; the reply is always a string, even on provider failure.
func (h *AskHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, h.log, http.StatusMethodNotAllowed, map[string]string{"error": "POST required"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, errors.Wrap(errors.ErrInvalidInput, "invalid JSON body"))
		return
	}
	if req.Question == "" {
		writeError(w, h.log, errors.Wrap(errors.ErrInvalidInput, "question is required"))
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.sessions.Create()
	}

	h.sessions.Append(sessionID, session.RoleUser, req.Question)
	answer := h.analyst.Answer(r.Context(), req.Question)
	h.sessions.Append(sessionID, session.RoleAssistant, answer)

	writeJSON(w, h.log, http.StatusOK, askResponse{
		SessionID: sessionID,
		Answer:    answer,
	})
}

// HandleQuestions returns the preset example questions.
func (h *AskHandler) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, map[string][]string{
		"questions": analyst.PresetQuestions(),
	})
}

// HandleTranscript returns the display transcript for ?session_id=.
func (h *AskHandler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		writeError(w, h.log, errors.Wrap(errors.ErrInvalidInput, "session_id is required"))
		return
	}

	entries, err := h.sessions.Transcript(id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"session_id": id,
		"transcript": entries,
	})
}
