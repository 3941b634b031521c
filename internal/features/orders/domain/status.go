package domain

import (
	"errors"
	"strings"
)

// Status represents the fulfillment state of an order.
type Status string

const (
	// StatusPending indicates the order has been placed but not yet handed to the warehouse.
	StatusPending Status = "pending"
	// StatusSentToWarehouse indicates the order has been dispatched to the warehouse.
	StatusSentToWarehouse Status = "sent to warehouse"
	// StatusConfirmedWarehouse indicates the warehouse has confirmed every item.
	StatusConfirmedWarehouse Status = "confirmed warehouse"
	// StatusDelivered indicates the order has reached the customer and is final.
	StatusDelivered Status = "delivered"
	// StatusCancelled is a terminal absorbing state reachable from any non-terminal state.
	StatusCancelled Status = "cancelled"
	// StatusUnknown is returned by ParseStatus for strings outside the closed set.
	StatusUnknown Status = "unknown"
)

// ErrInvalidTransition is returned when a requested status change is not
// adjacent in the fulfillment progression.
var ErrInvalidTransition = errors.New("invalid status transition")

// progression is the ordered non-terminal fulfillment path. Index in this
// slice is the step index shown on the progress bar.
var progression = []Status{
	StatusPending,
	StatusSentToWarehouse,
	StatusConfirmedWarehouse,
	StatusDelivered,
}

// ParseStatus maps a free-text backend status to the closed Status set.
// Matching is case and surrounding-whitespace insensitive; both "canceled"
// and "cancelled" spellings are accepted. Strings outside the set map to
// StatusUnknown (callers treat that as Pending for progress purposes).
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return StatusPending
	case "sent to warehouse":
		return StatusSentToWarehouse
	case "confirmed warehouse":
		return StatusConfirmedWarehouse
	case "delivered":
		return StatusDelivered
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

// StepIndex returns the position of s on the 4-step progress bar.
// Unrecognized and cancelled statuses fall back to step 0: the bar never
// renders Cancelled as a step, callers show it as a badge instead.
func (s Status) StepIndex() int {
	for i, st := range progression {
		if st == s {
			return i
		}
	}
	return 0
}

// IsTerminal reports whether no further forward transition exists from s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Next returns the single allowed forward transition from s.
// Delivered and Cancelled are terminal; anything else outside the
// progression has no forward move.
func (s Status) Next() (Status, error) {
	for i, st := range progression {
		if st == s {
			if i == len(progression)-1 {
				return "", ErrInvalidTransition
			}
			return progression[i+1], nil
		}
	}
	return "", ErrInvalidTransition
}

// CanTransition reports whether moving from s to target is an adjacent
// forward step in the fulfillment progression.
func (s Status) CanTransition(target Status) bool {
	next, err := s.Next()
	return err == nil && next == target
}

// StepForIndex returns the progression status at the given bar index.
// Out-of-range indexes clamp to the nearest end.
func StepForIndex(index int) Status {
	if index < 0 {
		return progression[0]
	}
	if index >= len(progression) {
		return progression[len(progression)-1]
	}
	return progression[index]
}

// StepCount is the number of steps on the progress bar.
func StepCount() int {
	return len(progression)
}
