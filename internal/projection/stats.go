// Package projection derives display data from an order snapshot:
// aggregate counts, revenue, elapsed-time buckets and the
// search/filter/sort pipeline. All functions are pure and never mutate
// their input, so they are safe to call on every refresh.
package projection

import (
	"time"

	"pizza-desk/internal/model"
)

// CountByStatus counts orders per status. Every status key is present
// in the result, zero-filled when absent from the snapshot.
func CountByStatus(orders []model.Order) map[model.OrderStatus]int {
	counts := make(map[model.OrderStatus]int, len(model.AllStatuses))
	for _, s := range model.AllStatuses {
		counts[s] = 0
	}
	for _, o := range orders {
		counts[o.OrderStatus]++
	}
	return counts
}

// InProgress returns the derived in-progress count: confirmed plus
// preparing.
func InProgress(counts map[model.OrderStatus]int) int {
	return counts[model.StatusConfirmed] + counts[model.StatusPreparing]
}

// RevenueToday sums total_amount over orders created on the same local
// calendar day as now, excluding cancelled orders. Recomputed on every
// snapshot; never cached.
func RevenueToday(orders []model.Order, now time.Time) float64 {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var total float64
	for _, o := range orders {
		if o.OrderStatus == model.StatusCancelled {
			continue
		}
		created := o.CreatedAt.In(now.Location())
		if !created.Before(dayStart) && created.Before(dayEnd) {
			total += o.TotalAmount
		}
	}
	return total
}

// Stats computes the full aggregate summary for a snapshot.
func Stats(orders []model.Order, now time.Time) model.Stats {
	counts := CountByStatus(orders)
	return model.Stats{
		CountByStatus: counts,
		InProgress:    InProgress(counts),
		RevenueToday:  RevenueToday(orders, now),
		Total:         len(orders),
	}
}
