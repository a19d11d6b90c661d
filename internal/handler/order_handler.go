package handler

import (
	"net/http"
	"strings"

	"pizza-desk/internal/projection"
	"pizza-desk/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	session *session.Session
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(sess *session.Session, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		session: sess,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// List handles GET /api/orders requests. Query parameters: search,
// status (all|urgent|<status>), sort (time|amount|status|priority),
// dir (asc|desc).
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	q := r.URL.Query()
	state := projection.ViewState{
		Search:  q.Get("search"),
		Filter:  projection.Filter(q.Get("status")),
		SortKey: projection.SortKey(q.Get("sort")),
		Desc:    q.Get("dir") == "desc",
	}
	if state.Filter == "" {
		state.Filter = projection.FilterAll
	}
	if state.SortKey == "" {
		state.SortKey = projection.SortByTime
		state.Desc = true
	}

	writeJSON(w, http.StatusOK, h.session.View(state))
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	view, found := h.session.Order(orderID)
	if !found {
		writeError(w, http.StatusNotFound, "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Advance handles POST /api/orders/{id}/advance requests, moving the
// order one step along the status pipeline.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	next, err := h.session.AdvanceStatus(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":     orderID,
		"status": next,
	})
}

// ToggleUrgent handles POST /api/orders/{id}/urgent requests, flipping
// the session-local urgent flag.
func (h *OrderHandler) ToggleUrgent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	urgent := h.session.ToggleUrgent(orderID)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     orderID,
		"urgent": urgent,
	})
}

// orderID extracts and parses the order id path segment from
// /api/orders/{id}[/...].
func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	idStr := strings.SplitN(rest, "/", 2)[0]
	if idStr == "" {
		writeError(w, http.StatusBadRequest, "order ID is required", h.logger)
		return uuid.Nil, false
	}

	orderID, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return uuid.Nil, false
	}
	return orderID, true
}
