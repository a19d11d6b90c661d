package router

import (
	"net/http"
	"strings"

	"pizza-desk/internal/handler"
	"pizza-desk/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	orderHandler *handler.OrderHandler,
	dashboardHandler *handler.DashboardHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	// Order handler function
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/api/orders" || path == "/api/orders/" {
			orderHandler.List(w, r)
			return
		}

		switch {
		case strings.HasSuffix(path, "/advance"):
			orderHandler.Advance(w, r)
		case strings.HasSuffix(path, "/urgent"):
			orderHandler.ToggleUrgent(w, r)
		default:
			orderHandler.GetByID(w, r)
		}
	}

	// Register order routes (both with and without trailing slash)
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	mux.HandleFunc("/api/stats", dashboardHandler.Stats)
	mux.HandleFunc("/api/events", dashboardHandler.Events)

	mux.HandleFunc("/api/notifications", dashboardHandler.Notifications)
	mux.HandleFunc("/api/notifications/read", dashboardHandler.MarkNotificationsRead)

	// Apply middleware in order: Recovery -> Logging -> Metrics -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Metrics(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
