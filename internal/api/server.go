package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	conversationapi "github.com/futig/concept-interview/internal/api/conversation"
	"github.com/futig/concept-interview/internal/api/docs"
	"github.com/futig/concept-interview/internal/api/middleware"
	proxyapi "github.com/futig/concept-interview/internal/api/proxy"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(conversationHandler *conversationapi.Handler, proxyHandler *proxyapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                  // Recover from panics
	r.Use(chimiddleware.RequestID)                  // Add request ID
	r.Use(middleware.Logger(logger))                // Log requests
	r.Use(middleware.CORS)                          // Handle CORS
	r.Use(chimiddleware.Timeout(120 * time.Second)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	conversationapi.RegisterRoutes(r, conversationHandler)
	proxyapi.RegisterRoutes(r, proxyHandler)

	return r
}
