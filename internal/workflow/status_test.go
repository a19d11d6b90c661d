package workflow

import (
	"testing"

	"pizza-desk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_Chain(t *testing.T) {
	tests := []struct {
		name     string
		current  model.OrderStatus
		expected model.OrderStatus
	}{
		{name: "Pending to confirmed", current: model.StatusPending, expected: model.StatusConfirmed},
		{name: "Confirmed to preparing", current: model.StatusConfirmed, expected: model.StatusPreparing},
		{name: "Preparing to ready", current: model.StatusPreparing, expected: model.StatusReady},
		{name: "Ready to out for delivery", current: model.StatusReady, expected: model.StatusOutForDelivery},
		{name: "Out for delivery to delivered", current: model.StatusOutForDelivery, expected: model.StatusDelivered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := NextStatus(tt.current)
			require.True(t, ok)
			assert.Equal(t, tt.expected, next)
			assert.True(t, CanAdvance(tt.current))
		})
	}
}

func TestNextStatus_Terminal(t *testing.T) {
	for _, status := range []model.OrderStatus{model.StatusDelivered, model.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			_, ok := NextStatus(status)
			assert.False(t, ok)
			assert.False(t, CanAdvance(status))
		})
	}
}

func TestLabel_And_ColorClass_Total(t *testing.T) {
	// Every status must have a label and a color class; a missing
	// entry is a defect, not a runtime fallback.
	for _, status := range model.AllStatuses {
		t.Run(string(status), func(t *testing.T) {
			assert.NotEmpty(t, Label(status))
			assert.NotEmpty(t, ColorClass(status))
		})
	}
}

func TestRank_CanonicalOrder(t *testing.T) {
	// Pipeline order, cancelled last, not alphabetical.
	assert.Less(t, Rank(model.StatusPending), Rank(model.StatusDelivered))
	assert.Less(t, Rank(model.StatusConfirmed), Rank(model.StatusPreparing))
	assert.Less(t, Rank(model.StatusDelivered), Rank(model.StatusCancelled))

	for i := 1; i < len(model.AllStatuses); i++ {
		assert.Equal(t, Rank(model.AllStatuses[i-1])+1, Rank(model.AllStatuses[i]))
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name      string
		from      model.OrderStatus
		to        model.OrderStatus
		expectErr bool
	}{
		{name: "Adjacent step", from: model.StatusPending, to: model.StatusConfirmed, expectErr: false},
		{name: "Skipped stage", from: model.StatusPending, to: model.StatusReady, expectErr: true},
		{name: "Backwards", from: model.StatusReady, to: model.StatusPreparing, expectErr: true},
		{name: "Out of terminal", from: model.StatusDelivered, to: model.StatusPending, expectErr: true},
		{name: "Into cancelled", from: model.StatusPending, to: model.StatusCancelled, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.expectErr {
				assert.Equal(t, model.ErrInvalidTransition, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
