package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		expectedStatus int
	}{
		{name: "Normal request passes through", method: http.MethodGet, expectedStatus: http.StatusOK},
		{name: "Preflight short-circuits", method: http.MethodOptions, expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/orders", nil)
			w := httptest.NewRecorder()

			CORS(okHandler()).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	logger := zerolog.Nop()
	apiKey := "test-api-key-123"

	tests := []struct {
		name           string
		path           string
		providedKey    string
		expectedStatus int
	}{
		{name: "Valid key", path: "/api/orders", providedKey: apiKey, expectedStatus: http.StatusOK},
		{name: "Missing key", path: "/api/orders", providedKey: "", expectedStatus: http.StatusUnauthorized},
		{name: "Invalid key", path: "/api/orders", providedKey: "wrong-key", expectedStatus: http.StatusUnauthorized},
		{name: "Health bypasses auth", path: "/health", providedKey: "", expectedStatus: http.StatusOK},
		{name: "Metrics bypasses auth", path: "/metrics", providedKey: "", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.providedKey != "" {
				req.Header.Set("X-API-Key", tt.providedKey)
			}
			w := httptest.NewRecorder()

			APIKeyAuth(apiKey, logger)(okHandler()).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestLogging_PassesThrough(t *testing.T) {
	logger := zerolog.Nop()

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	w := httptest.NewRecorder()

	Logging(logger)(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestMetrics_PassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	w := httptest.NewRecorder()

	Metrics(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutePattern(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "Order list", path: "/api/orders", expected: "/api/orders"},
		{name: "Order list trailing slash", path: "/api/orders/", expected: "/api/orders"},
		{
			name:     "Order by id collapses",
			path:     "/api/orders/a9f6f1a2-3f4b-4c89-9a6c-0d6a3f1b2c3d",
			expected: "/api/orders/{id}",
		},
		{
			name:     "Advance collapses",
			path:     "/api/orders/a9f6f1a2-3f4b-4c89-9a6c-0d6a3f1b2c3d/advance",
			expected: "/api/orders/{id}/advance",
		},
		{
			name:     "Urgent collapses",
			path:     "/api/orders/a9f6f1a2-3f4b-4c89-9a6c-0d6a3f1b2c3d/urgent",
			expected: "/api/orders/{id}/urgent",
		},
		{name: "Stats untouched", path: "/api/stats", expected: "/api/stats"},
		{name: "Health untouched", path: "/health", expected: "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, routePattern(tt.path))
		})
	}
}

func TestRoutePattern_DistinctIDsShareLabel(t *testing.T) {
	// Metric label cardinality must not grow with the number of orders.
	a := routePattern("/api/orders/0b9f3e9c-8a1d-4f6e-b2c3-1d2e3f4a5b6c/advance")
	b := routePattern("/api/orders/f1e2d3c4-b5a6-4789-8abc-def012345678/advance")

	assert.Equal(t, a, b)
}

func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	w := httptest.NewRecorder()

	Recovery(logger)(panicking).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "internal server error"}`, w.Body.String())
}

func TestResponseWriter_CapturesStatus(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, rw.statusCode)
	assert.Equal(t, http.StatusTeapot, w.Code)
}
