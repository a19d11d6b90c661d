// Package workflow defines the fixed status pipeline an order moves
// through and the display attributes of each status. Everything here is
// a pure lookup; persistence and orchestration live elsewhere.
package workflow

import "pizza-desk/internal/model"

// successors maps each status to its single permitted next status.
// Delivered and cancelled are terminal and have no entry.
var successors = map[model.OrderStatus]model.OrderStatus{
	model.StatusPending:        model.StatusConfirmed,
	model.StatusConfirmed:      model.StatusPreparing,
	model.StatusPreparing:      model.StatusReady,
	model.StatusReady:          model.StatusOutForDelivery,
	model.StatusOutForDelivery: model.StatusDelivered,
}

var labels = map[model.OrderStatus]string{
	model.StatusPending:        "Pending",
	model.StatusConfirmed:      "Confirmed",
	model.StatusPreparing:      "Preparing",
	model.StatusReady:          "Ready",
	model.StatusOutForDelivery: "Out for Delivery",
	model.StatusDelivered:      "Delivered",
	model.StatusCancelled:      "Cancelled",
}

var colorClasses = map[model.OrderStatus]string{
	model.StatusPending:        "status-pending",
	model.StatusConfirmed:      "status-confirmed",
	model.StatusPreparing:      "status-preparing",
	model.StatusReady:          "status-ready",
	model.StatusOutForDelivery: "status-out-for-delivery",
	model.StatusDelivered:      "status-delivered",
	model.StatusCancelled:      "status-cancelled",
}

// ranks assigns each status its canonical ordinal for sorting.
var ranks = func() map[model.OrderStatus]int {
	m := make(map[model.OrderStatus]int, len(model.AllStatuses))
	for i, s := range model.AllStatuses {
		m[s] = i
	}
	return m
}()

// NextStatus returns the single successor of the given status, or false
// when the status is terminal. Advancing is always single-step: callers
// wanting to skip stages must issue one transition per stage.
func NextStatus(s model.OrderStatus) (model.OrderStatus, bool) {
	next, ok := successors[s]
	return next, ok
}

// CanAdvance reports whether the status has a successor.
func CanAdvance(s model.OrderStatus) bool {
	_, ok := successors[s]
	return ok
}

// Label returns the display label for a status.
func Label(s model.OrderStatus) string {
	return labels[s]
}

// ColorClass returns the display color class for a status.
func ColorClass(s model.OrderStatus) string {
	return colorClasses[s]
}

// Rank returns the position of a status in the canonical pipeline
// order, with cancelled last. Unknown statuses sort after everything.
func Rank(s model.OrderStatus) int {
	if r, ok := ranks[s]; ok {
		return r
	}
	return len(model.AllStatuses)
}

// ValidateTransition rejects any transition that is not the single
// next step of the pipeline.
func ValidateTransition(from, to model.OrderStatus) error {
	next, ok := successors[from]
	if !ok || next != to {
		return model.ErrInvalidTransition
	}
	return nil
}
