package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/shippedtoday/pkg/config"
	"github.com/wadjakorntonsri/shippedtoday/pkg/logger"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, service ports.LaunchService, log *logger.Logger) http.Handler {
	// Initialize Handlers
	h := NewHTTPHandler(service, Options{
		TrustProxy:      cfg.TrustProxy,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	}, log)

	// Initialize Middleware
	mw := NewMiddleware(cfg, log)

	// Initialize Auth Handler
	authHandler := NewAuthHandler(cfg, log)

	// Setup Router
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /api/launches", h.List)
	mux.Handle("POST /api/launches", mw.SameOrigin(http.HandlerFunc(h.Create)))
	mux.HandleFunc("GET /api/launches/{id}", h.Get)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Admin Routes
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET /api/admin/export", h.Export)
	mux.Handle("/api/admin/", mw.AuthMiddleware(adminMux))

	return mw.RequestLogger(mux)
}
