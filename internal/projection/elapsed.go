package projection

import (
	"fmt"
	"time"

	"pizza-desk/internal/model"

	"github.com/google/uuid"
)

// ElapsedBucket classifies how long an order has been waiting.
type ElapsedBucket int

// Elapsed-time buckets, in increasing urgency. Boundaries are
// inclusive-lower/exclusive-upper: <5, 5-14, 15-29, >=30 minutes.
const (
	BucketJustNow ElapsedBucket = iota
	BucketLow
	BucketMedium
	BucketHigh
)

// ElapsedInfo describes the elapsed time since an order was created.
type ElapsedInfo struct {
	Minutes int
	Bucket  ElapsedBucket
}

// Elapsed computes whole minutes between created and now and assigns
// the urgency bucket.
func Elapsed(created, now time.Time) ElapsedInfo {
	minutes := int(now.Sub(created).Minutes())
	if minutes < 0 {
		minutes = 0
	}

	var bucket ElapsedBucket
	switch {
	case minutes < 5:
		bucket = BucketJustNow
	case minutes < 15:
		bucket = BucketLow
	case minutes < 30:
		bucket = BucketMedium
	default:
		bucket = BucketHigh
	}

	return ElapsedInfo{Minutes: minutes, Bucket: bucket}
}

// Label returns the display text for the elapsed time.
func (e ElapsedInfo) Label() string {
	if e.Bucket == BucketJustNow {
		return "just now"
	}
	return fmt.Sprintf("%dm ago", e.Minutes)
}

// ColorClass returns the urgency color class for the bucket.
func (e ElapsedInfo) ColorClass() string {
	switch e.Bucket {
	case BucketLow:
		return "elapsed-low"
	case BucketMedium:
		return "elapsed-medium"
	case BucketHigh:
		return "elapsed-high"
	default:
		return "elapsed-fresh"
	}
}

// Annotate decorates each order with its elapsed-time display fields
// and the session-local urgent flag. The input slice is not modified.
func Annotate(orders []model.Order, urgent map[uuid.UUID]struct{}, now time.Time) []model.OrderView {
	views := make([]model.OrderView, len(orders))
	for i, o := range orders {
		info := Elapsed(o.CreatedAt, now)
		_, isUrgent := urgent[o.ID]
		views[i] = model.OrderView{
			Order:          o,
			ElapsedMinutes: info.Minutes,
			ElapsedLabel:   info.Label(),
			ElapsedClass:   info.ColorClass(),
			Urgent:         isUrgent,
		}
	}
	return views
}
