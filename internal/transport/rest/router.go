package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"gobag/internal/service"
	"gobag/internal/transport/rest/handler"
	"gobag/internal/transport/rest/middleware"
	"gobag/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	ResolverService   *service.ResolverService
	SessionService    *service.SessionService
	ItemListService   *service.ItemListService
	MigrationService  *service.MigrationService
	SubmissionService *service.SubmissionService
	AggregationSvc    *service.AggregationService
	StatusService     *service.StatusService
	WSHub             *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	joinHandler := handler.NewJoinHandler(c.ResolverService)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.StatusService)
	listHandler := handler.NewItemListHandler(c.ItemListService, c.MigrationService)
	submissionHandler := handler.NewSubmissionHandler(c.SubmissionService)
	resultsHandler := handler.NewResultsHandler(c.AggregationSvc)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.AggregationSvc, c.SessionService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/anonymous", authHandler.Anonymous).Methods("POST", "OPTIONS")
	v1.HandleFunc("/join", joinHandler.Join).Methods("POST", "OPTIONS")

	// WebSocket routes (dashboard carries token in query param, team route is
	// public since access-code knowledge is the credential)
	v1.HandleFunc("/ws/sessions/{id}/dashboard", wsHandler.DashboardWS).Methods("GET")
	v1.HandleFunc("/ws/sessions/{id}/teams/{teamId}", wsHandler.TeamWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Submission routes (participant token optional, team routes are keyed by
	// access-code resolution on the client side)
	submitRoutes := v1.NewRoute().Subrouter()
	submitRoutes.Use(authMW.WithParticipant)

	submitRoutes.HandleFunc("/sessions/{id}/teams/{teamId}/toggle", submissionHandler.ToggleTeamItem).Methods("POST", "OPTIONS")
	submitRoutes.HandleFunc("/sessions/{id}/teams/{teamId}/submit", submissionHandler.SubmitTeam).Methods("POST", "OPTIONS")
	submitRoutes.HandleFunc("/sessions/{id}/participants/submit", submissionHandler.SubmitParticipant).Methods("POST", "OPTIONS")

	// Facilitator routes (require facilitator auth)
	facRoutes := v1.NewRoute().Subrouter()
	facRoutes.Use(authMW.RequireFacilitator)

	facRoutes.HandleFunc("/status", sessionHandler.Status).Methods("GET", "OPTIONS")
	facRoutes.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	facRoutes.HandleFunc("/sessions", sessionHandler.List).Methods("GET", "OPTIONS")
	facRoutes.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	facRoutes.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods("DELETE", "OPTIONS")
	facRoutes.HandleFunc("/sessions/{id}/teams", sessionHandler.Teams).Methods("GET", "OPTIONS")
	facRoutes.HandleFunc("/sessions/{id}/reset", sessionHandler.Reset).Methods("POST", "OPTIONS")
	facRoutes.HandleFunc("/sessions/{id}/results", resultsHandler.Get).Methods("GET", "OPTIONS")
	facRoutes.HandleFunc("/sessions/{id}/results/csv", resultsHandler.ExportCSV).Methods("GET", "OPTIONS")

	facRoutes.HandleFunc("/lists", listHandler.Create).Methods("POST", "OPTIONS")
	facRoutes.HandleFunc("/lists", listHandler.List).Methods("GET", "OPTIONS")
	facRoutes.HandleFunc("/lists/{id}", listHandler.Get).Methods("GET", "OPTIONS")
	facRoutes.HandleFunc("/lists/{id}", listHandler.Delete).Methods("DELETE", "OPTIONS")
	facRoutes.HandleFunc("/lists/{id}/name", listHandler.Rename).Methods("PUT", "OPTIONS")
	facRoutes.HandleFunc("/lists/{id}/items", listHandler.AddItem).Methods("POST", "OPTIONS")
	facRoutes.HandleFunc("/lists/{id}/items/{name}", listHandler.RemoveItem).Methods("DELETE", "OPTIONS")
	facRoutes.HandleFunc("/lists/{id}/migrate", listHandler.Migrate).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
