package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseStatus_CaseAndWhitespaceVariants verifies the parser normalizes
// backend free text into the closed status set.
func TestParseStatus_CaseAndWhitespaceVariants(t *testing.T) {
	cases := map[string]Status{
		"pending":               StatusPending,
		"Pending":               StatusPending,
		"  PENDING  ":           StatusPending,
		"sent to warehouse":     StatusSentToWarehouse,
		"Sent To Warehouse":     StatusSentToWarehouse,
		"CONFIRMED WAREHOUSE":   StatusConfirmedWarehouse,
		"delivered":             StatusDelivered,
		"  Delivered\t":         StatusDelivered,
		"cancelled":             StatusCancelled,
		"canceled":              StatusCancelled,
		"CANCELED":              StatusCancelled,
		"refunded":              StatusUnknown,
		"":                      StatusUnknown,
		"sent  to  warehouse":   StatusUnknown,
		"pending confirmation!": StatusUnknown,
	}

	for raw, want := range cases {
		assert.Equal(t, want, ParseStatus(raw), "raw=%q", raw)
	}
}

// TestStatus_StepIndex_Monotonic verifies step indexes strictly increase
// along the fulfillment progression, regardless of input casing.
func TestStatus_StepIndex_Monotonic(t *testing.T) {
	raws := []string{"Pending", "SENT TO WAREHOUSE", "confirmed warehouse", "Delivered"}

	prev := -1
	for _, raw := range raws {
		idx := ParseStatus(raw).StepIndex()
		assert.Greater(t, idx, prev, "status %q", raw)
		prev = idx
	}
	assert.Equal(t, StepCount()-1, prev)
}

// TestStatus_StepIndex_Fallback verifies unrecognized and cancelled statuses
// fall back to step 0 instead of erroring.
func TestStatus_StepIndex_Fallback(t *testing.T) {
	assert.Equal(t, 0, StatusUnknown.StepIndex())
	assert.Equal(t, 0, StatusCancelled.StepIndex())
	assert.Equal(t, 0, ParseStatus("something else entirely").StepIndex())
}

// TestStatus_Next_Progression verifies the single allowed forward move for
// every non-terminal status.
func TestStatus_Next_Progression(t *testing.T) {
	next, err := StatusPending.Next()
	require.NoError(t, err)
	assert.Equal(t, StatusSentToWarehouse, next)

	next, err = StatusSentToWarehouse.Next()
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmedWarehouse, next)

	next, err = StatusConfirmedWarehouse.Next()
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, next)
}

// TestStatus_Next_Terminal verifies terminal and unknown statuses have no
// forward move.
func TestStatus_Next_Terminal(t *testing.T) {
	_, err := StatusDelivered.Next()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = StatusCancelled.Next()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = StatusUnknown.Next()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// TestStatus_CanTransition_RejectsSkips verifies every non-adjacent move in
// the transition table is rejected.
func TestStatus_CanTransition_RejectsSkips(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusSentToWarehouse))
	assert.True(t, StatusSentToWarehouse.CanTransition(StatusConfirmedWarehouse))
	assert.True(t, StatusConfirmedWarehouse.CanTransition(StatusDelivered))

	assert.False(t, StatusPending.CanTransition(StatusConfirmedWarehouse))
	assert.False(t, StatusPending.CanTransition(StatusDelivered))
	assert.False(t, StatusSentToWarehouse.CanTransition(StatusDelivered))
	assert.False(t, StatusSentToWarehouse.CanTransition(StatusPending))
	assert.False(t, StatusDelivered.CanTransition(StatusPending))
	assert.False(t, StatusDelivered.CanTransition(StatusCancelled))
}

// TestStepForIndex_Clamps verifies out-of-range indexes clamp to the bar ends.
func TestStepForIndex_Clamps(t *testing.T) {
	assert.Equal(t, StatusPending, StepForIndex(-1))
	assert.Equal(t, StatusPending, StepForIndex(0))
	assert.Equal(t, StatusDelivered, StepForIndex(3))
	assert.Equal(t, StatusDelivered, StepForIndex(99))
}
