package handler

import (
	"net/http"
	"strconv"

	"memberportal/internal/service"

	"github.com/gorilla/mux"
)

// AdminHandler serves the admin dashboard endpoints.
type AdminHandler struct {
	adminSvc *service.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminSvc *service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// Dashboard handles GET /v1/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.adminSvc.Dashboard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Submissions handles GET /v1/admin/surveys/{surveyId}/submissions
func (h *AdminHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	subs, err := h.adminSvc.RecentSubmissions(r.Context(), surveyID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs})
}
