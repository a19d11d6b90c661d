package projection

import (
	"sort"
	"strings"

	"pizza-desk/internal/model"
	"pizza-desk/internal/workflow"

	"github.com/google/uuid"
)

// Filter selects which orders the list shows.
type Filter string

// Filter values. FilterUrgent matches membership in the session's
// urgent set regardless of order status; every other non-all value
// matches order status exactly.
const (
	FilterAll    Filter = "all"
	FilterUrgent Filter = "urgent"
)

// SortKey selects the sort dimension of the order list.
type SortKey string

// Sort keys.
const (
	SortByTime     SortKey = "time"
	SortByAmount   SortKey = "amount"
	SortByStatus   SortKey = "status"
	SortByPriority SortKey = "priority"
)

// ViewState is the transient UI state the pipeline runs against:
// search term, filter selection, sort key/direction and the
// session-local urgent set.
type ViewState struct {
	Search  string
	Filter  Filter
	SortKey SortKey
	Desc    bool
	Urgent  map[uuid.UUID]struct{}
}

// Apply runs the fixed search -> filter -> sort pipeline over the
// snapshot and returns a new slice; the input is never modified and
// identical inputs always produce identical output.
func Apply(orders []model.Order, state ViewState) []model.Order {
	result := search(orders, state.Search)
	result = filterOrders(result, state.Filter, state.Urgent)
	sortOrders(result, state)
	return result
}

// search keeps orders whose order number, customer name or phone
// contains the term, case-insensitively. An empty term keeps
// everything. Always returns a fresh slice so later stages may sort
// in place without touching the input.
func search(orders []model.Order, term string) []model.Order {
	if term == "" {
		return append([]model.Order(nil), orders...)
	}

	needle := strings.ToLower(term)
	result := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.OrderNumber), needle) ||
			strings.Contains(strings.ToLower(o.CustomerName), needle) ||
			strings.Contains(o.CustomerPhone, term) {
			result = append(result, o)
		}
	}
	return result
}

func filterOrders(orders []model.Order, f Filter, urgent map[uuid.UUID]struct{}) []model.Order {
	switch f {
	case "", FilterAll:
		return orders
	case FilterUrgent:
		result := orders[:0]
		for _, o := range orders {
			if _, ok := urgent[o.ID]; ok {
				result = append(result, o)
			}
		}
		return result
	default:
		result := orders[:0]
		for _, o := range orders {
			if o.OrderStatus == model.OrderStatus(f) {
				result = append(result, o)
			}
		}
		return result
	}
}

// sortOrders sorts in place, stably, so equal keys keep their relative
// order and the list does not jitter between refreshes.
func sortOrders(orders []model.Order, state ViewState) {
	var less func(i, j int) bool

	switch state.SortKey {
	case SortByTime:
		less = func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) }
	case SortByAmount:
		less = func(i, j int) bool { return orders[i].TotalAmount < orders[j].TotalAmount }
	case SortByStatus:
		less = func(i, j int) bool {
			return workflow.Rank(orders[i].OrderStatus) < workflow.Rank(orders[j].OrderStatus)
		}
	case SortByPriority:
		// Urgent-flagged orders sort first; ties keep input order.
		rank := func(o model.Order) int {
			if _, ok := state.Urgent[o.ID]; ok {
				return 0
			}
			return 1
		}
		less = func(i, j int) bool { return rank(orders[i]) < rank(orders[j]) }
	default:
		return
	}

	if state.Desc {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(orders, less)
}
