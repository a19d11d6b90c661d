package session

import (
	"time"

	"pizza-desk/internal/model"
	"pizza-desk/internal/projection"

	"github.com/google/uuid"
)

// Snapshot returns a copy of the current order snapshot.
func (s *Session) Snapshot() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Order(nil), s.snapshot...)
}

// Urgent returns a copy of the session's urgent-id set.
func (s *Session) Urgent() map[uuid.UUID]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	urgent := make(map[uuid.UUID]struct{}, len(s.urgent))
	for id := range s.urgent {
		urgent[id] = struct{}{}
	}
	return urgent
}

// View runs the filter/sort/search pipeline over the current snapshot
// with the session's urgent set and returns the annotated list.
func (s *Session) View(state projection.ViewState) []model.OrderView {
	s.mu.RLock()
	orders := append([]model.Order(nil), s.snapshot...)
	urgent := make(map[uuid.UUID]struct{}, len(s.urgent))
	for id := range s.urgent {
		urgent[id] = struct{}{}
	}
	inflight := make(map[uuid.UUID]struct{}, len(s.inflight))
	for id := range s.inflight {
		inflight[id] = struct{}{}
	}
	s.mu.RUnlock()

	state.Urgent = urgent
	views := projection.Annotate(projection.Apply(orders, state), urgent, time.Now())
	for i := range views {
		_, views[i].Updating = inflight[views[i].ID]
	}
	return views
}

// Order returns the annotated view of a single order.
func (s *Session) Order(orderID uuid.UUID) (model.OrderView, bool) {
	s.mu.RLock()
	order, ok := s.find(orderID)
	if !ok {
		s.mu.RUnlock()
		return model.OrderView{}, false
	}
	o := *order
	_, urgent := s.urgent[orderID]
	_, updating := s.inflight[orderID]
	s.mu.RUnlock()

	info := projection.Elapsed(o.CreatedAt, time.Now())
	return model.OrderView{
		Order:          o,
		ElapsedMinutes: info.Minutes,
		ElapsedLabel:   info.Label(),
		ElapsedClass:   info.ColorClass(),
		Urgent:         urgent,
		Updating:       updating,
	}, true
}

// Stats computes the aggregate summary of the current snapshot.
func (s *Session) Stats() model.Stats {
	s.mu.RLock()
	orders := append([]model.Order(nil), s.snapshot...)
	s.mu.RUnlock()

	return projection.Stats(orders, time.Now())
}
