package handler

import (
	"fmt"
	"net/http"

	"pizza-desk/internal/session"

	"github.com/rs/zerolog"
)

// DashboardHandler serves the aggregate stats, notification and
// real-time event endpoints.
type DashboardHandler struct {
	session *session.Session
	logger  zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(sess *session.Session, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		session: sess,
		logger:  logger.With().Str("handler", "dashboard").Logger(),
	}
}

// Stats handles GET /api/stats requests.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.session.Stats())
}

// Notifications handles GET /api/notifications requests.
func (h *DashboardHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.session.Notifications())
}

// MarkNotificationsRead handles POST /api/notifications/read requests.
func (h *DashboardHandler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	h.session.MarkNotificationsRead()
	w.WriteHeader(http.StatusNoContent)
}

// Events handles GET /api/events: a server-sent-event stream that
// emits a "changed" tick whenever the snapshot or urgent set changes.
// The front-end reacts by refetching; events carry no payload.
func (h *DashboardHandler) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticks, cancel := h.session.Listen()
	defer cancel()

	h.logger.Debug().Str("remote_addr", r.RemoteAddr).Msg("event stream opened")

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug().Str("remote_addr", r.RemoteAddr).Msg("event stream closed")
			return
		case <-ticks:
			if _, err := fmt.Fprint(w, "event: changed\ndata: {}\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
