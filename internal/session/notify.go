package session

import (
	"time"

	"pizza-desk/internal/model"

	"github.com/google/uuid"
)

// notify records a transient user-facing notification. The history is
// capped; the oldest entries fall off first.
func (s *Session) notify(level, message string) {
	s.mu.Lock()
	s.notifications = append(s.notifications, model.Notification{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}
	s.mu.Unlock()
}

// Notifications returns the retained notifications, newest last.
func (s *Session) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Notification(nil), s.notifications...)
}

// MarkNotificationsRead marks every retained notification as read.
func (s *Session) MarkNotificationsRead() {
	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
	s.mu.Unlock()
}

// Listen registers a change listener for snapshot or urgent-set
// changes, used by the SSE endpoint. The returned cancel func must be
// called on teardown.
func (s *Session) Listen() (<-chan struct{}, func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	ch := make(chan struct{}, 1)
	s.listeners[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

// broadcast wakes every listener without blocking; a listener that has
// not drained its previous tick simply coalesces.
func (s *Session) broadcast() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
