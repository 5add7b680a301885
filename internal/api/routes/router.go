package routes

import (
	"net/http"

	"github.com/zatekoja/woundtrack/internal/api/handlers"
	"github.com/zatekoja/woundtrack/internal/api/middleware"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	healthHandler     *handlers.HealthHandler
	authHandler       *handlers.AuthHandler
	locationHandler   *handlers.LocationHandler
	hospitalHandler   *handlers.HospitalHandler
	predictionHandler *handlers.PredictionHandler
	sseHandler        *handlers.SSEHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// Handlers groups the handlers served by the app API. SSE is optional.
type Handlers struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Location   *handlers.LocationHandler
	Hospital   *handlers.HospitalHandler
	Prediction *handlers.PredictionHandler
	SSE        *handlers.SSEHandler
}

// NewRouter creates a new router
func NewRouter(h Handlers, allowedOrigins []string, metrics *observability.Metrics) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		healthHandler:     h.Health,
		authHandler:       h.Auth,
		locationHandler:   h.Location,
		hospitalHandler:   h.Hospital,
		predictionHandler: h.Prediction,
		sseHandler:        h.SSE,
		allowedOrigins:    allowedOrigins,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Auth endpoints
	r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /api/auth/register", r.authHandler.Register)
	r.mux.HandleFunc("POST /api/auth/logout", r.authHandler.Logout)
	r.mux.HandleFunc("GET /api/auth/me", r.authHandler.Me)
	r.mux.HandleFunc("GET /api/auth/profile", r.authHandler.Profile)

	// Location
	r.mux.HandleFunc("GET /api/location", r.locationHandler.GetLocation)

	// Hospital directory
	r.mux.HandleFunc("GET /api/hospitals/nearby", r.hospitalHandler.Nearby)
	r.mux.HandleFunc("GET /api/hospitals/search", r.hospitalHandler.Search)
	r.mux.HandleFunc("GET /api/hospitals/{id}", r.hospitalHandler.GetHospital)

	// Predictions
	r.mux.HandleFunc("POST /api/predictions", r.predictionHandler.Submit)
	r.mux.HandleFunc("GET /api/predictions", r.predictionHandler.List)
	r.mux.HandleFunc("GET /api/predictions/{id}", r.predictionHandler.GetPrediction)

	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/predictions/events", r.sseHandler.StreamPredictions)
	}

	// The observability middleware must sit directly on the mux so the
	// matched pattern is visible after the call.
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
