package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"prepwise/internal/model"
	"prepwise/internal/repository"
	"prepwise/internal/service"
	"prepwise/internal/transport/rest/middleware"
)

// SessionHandler handles the test session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Current handles GET /v1/sessions/current?product={p}&mode={m}&section={s}
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	product := r.URL.Query().Get("product")
	mode := model.TestMode(r.URL.Query().Get("mode"))
	section := r.URL.Query().Get("section")

	if product == "" || section == "" {
		writeError(w, http.StatusBadRequest, "missing product or section query param")
		return
	}
	if !model.ValidMode(mode) {
		writeError(w, http.StatusBadRequest, "unknown test mode")
		return
	}

	session, err := h.sessionSvc.CurrentSession(r.Context(), userID, product, mode, section)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// SaveProgress handles PUT /v1/sessions/{id}/progress
func (h *SessionHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID := mux.Vars(r)["id"]

	var progress model.SessionProgress
	if err := json.NewDecoder(r.Body).Decode(&progress); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessionSvc.SaveProgress(r.Context(), userID, sessionID, &progress); err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// Complete handles POST /v1/sessions/{id}/complete
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID := mux.Vars(r)["id"]

	var completion model.SessionCompletion
	if err := json.NewDecoder(r.Body).Decode(&completion); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessionSvc.CompleteSession(r.Context(), userID, sessionID, &completion); err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

type recordResponseRequest struct {
	QuestionID       string `json:"questionId"`
	Answer           string `json:"answer"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

// RecordResponse handles POST /v1/sessions/{id}/responses
func (h *SessionHandler) RecordResponse(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID := mux.Vars(r)["id"]

	var req recordResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "missing questionId")
		return
	}

	attempt, err := h.sessionSvc.RecordResponse(r.Context(), userID, sessionID, req.QuestionID, req.Answer, req.TimeSpentSeconds)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, attempt)
}

// writeSessionError maps the session service's sentinel errors onto
// HTTP statuses. A write against a completed session is a conflict, not
// a server fault.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotSessionOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrSessionCompleted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
