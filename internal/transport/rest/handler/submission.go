package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"memberportal/internal/model"
	"memberportal/internal/service"
)

// SubmissionHandler hosts the primary submission intake endpoint.
type SubmissionHandler struct {
	submissionSvc *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionSvc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// Accept handles POST /v1/submissions
func (h *SubmissionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var payload model.SubmitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SurveyID == "" {
		writeError(w, http.StatusBadRequest, "surveyId is required")
		return
	}

	id, err := h.submissionSvc.Accept(r.Context(), payload.SurveyID, &payload)
	if err != nil {
		if errors.Is(err, service.ErrEmptySubmission) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"submissionId": id})
}
