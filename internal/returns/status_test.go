package returns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending to approved", StatusPending, StatusApproved, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending cannot skip to received", StatusPending, StatusReceived, false},
		{"pending cannot skip to refunded", StatusPending, StatusRefunded, false},
		{"approved to received", StatusApproved, StatusReceived, true},
		{"approved to cancelled", StatusApproved, StatusCancelled, true},
		{"approved cannot go back to pending", StatusApproved, StatusPending, false},
		{"received to inspected", StatusReceived, StatusInspected, true},
		{"received to rejected", StatusReceived, StatusRejected, true},
		{"received cannot be cancelled", StatusReceived, StatusCancelled, false},
		{"inspected to refunded", StatusInspected, StatusRefunded, true},
		{"inspected cannot be cancelled", StatusInspected, StatusCancelled, false},
		{"refunded to completed", StatusRefunded, StatusCompleted, true},
		{"refunded cannot be rejected", StatusRefunded, StatusRejected, false},
		{"completed is terminal", StatusCompleted, StatusPending, false},
		{"rejected is terminal", StatusRejected, StatusApproved, false},
		{"cancelled is terminal", StatusCancelled, StatusApproved, false},
		{"self transition is not allowed", StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []Status{StatusCompleted, StatusRejected, StatusCancelled}
	for _, s := range terminal {
		assert.True(t, IsTerminal(s), "expected %s to be terminal", s)
	}

	active := []Status{StatusPending, StatusApproved, StatusReceived, StatusInspected, StatusRefunded}
	for _, s := range active {
		assert.False(t, IsTerminal(s), "expected %s to be active", s)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusRefunded.Valid())
	assert.False(t, Status("shipped").Valid())
	assert.False(t, Status("").Valid())
}
