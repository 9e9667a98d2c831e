package rest

import (
	"net/http"
	"os"

	"memberportal/internal/service"
	"memberportal/internal/transport/rest/handler"
	"memberportal/internal/transport/rest/middleware"
	"memberportal/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	FlowService       *service.FlowService
	SubmissionService *service.SubmissionService
	AdminService      *service.AdminService
	WSHub             *ws.Hub
	AdminToken        string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.FlowService)
	submissionHandler := handler.NewSubmissionHandler(c.SubmissionService)
	adminHandler := handler.NewAdminHandler(c.AdminService)
	wsHandler := ws.NewHandler(c.WSHub, c.FlowService)

	authMW := middleware.NewAuthMiddleware(c.AuthService, c.AdminToken)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/submissions", submissionHandler.Accept).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Member routes (require member auth)
	memberRoutes := v1.NewRoute().Subrouter()
	memberRoutes.Use(authMW.RequireMember)

	memberRoutes.HandleFunc("/surveys", sessionHandler.ListSurveys).Methods("GET", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/{surveyId}/catalog", sessionHandler.GetCatalog).Methods("GET", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/{surveyId}/session", sessionHandler.Open).Methods("POST", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/{surveyId}/session/answers", sessionHandler.Answer).Methods("POST", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/{surveyId}/session/back", sessionHandler.Back).Methods("POST", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/{surveyId}/session/completed", sessionHandler.Completed).Methods("GET", "OPTIONS")

	// WebSocket chat transport (token via query param)
	memberRoutes.HandleFunc("/ws/surveys/{surveyId}", wsHandler.SurveyWS).Methods("GET")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/admin/dashboard", adminHandler.Dashboard).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/admin/surveys/{surveyId}/submissions", adminHandler.Submissions).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
