package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"memberportal/internal/flow"
	"memberportal/internal/model"
	"memberportal/internal/service"
	"memberportal/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// SessionHandler drives conversational survey sessions over REST.
type SessionHandler struct {
	flowSvc *service.FlowService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(flowSvc *service.FlowService) *SessionHandler {
	return &SessionHandler{flowSvc: flowSvc}
}

// ListSurveys handles GET /v1/surveys
func (h *SessionHandler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"surveys": h.flowSvc.Surveys()})
}

// GetCatalog handles GET /v1/surveys/{surveyId}/catalog
func (h *SessionHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	cat := h.flowSvc.Catalog(mux.Vars(r)["surveyId"])
	if cat == nil {
		writeError(w, http.StatusNotFound, "survey not found")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// Open handles POST /v1/surveys/{surveyId}/session. Starts a fresh
// session or resumes a saved one.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	memberID := middleware.GetMemberID(r.Context())
	email := middleware.GetEmail(r.Context())

	view, err := h.flowSvc.OpenSession(r.Context(), surveyID, memberID, email)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AnswerRequest is the request body for submitting an answer.
type AnswerRequest struct {
	Answer model.AnswerValue `json:"answer"`
}

// Answer handles POST /v1/surveys/{surveyId}/session/answers
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	memberID := middleware.GetMemberID(r.Context())

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.flowSvc.Answer(r.Context(), surveyID, memberID, req.Answer)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Back handles POST /v1/surveys/{surveyId}/session/back
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	memberID := middleware.GetMemberID(r.Context())

	view, err := h.flowSvc.Back(r.Context(), surveyID, memberID)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Completed handles GET /v1/surveys/{surveyId}/session/completed
func (h *SessionHandler) Completed(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	memberID := middleware.GetMemberID(r.Context())

	rec, err := h.flowSvc.Completed(r.Context(), surveyID, memberID)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "no completed submission")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSurveyNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoActiveSession):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, flow.ErrAnswerRequired), errors.Is(err, flow.ErrNotAwaiting), errors.Is(err, flow.ErrCannotGoBack):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
