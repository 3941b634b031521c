package ports

import (
	"context"
	"errors"

	"fulfillment-tracker/internal/features/orders/domain"
)

var (
	// ErrOrderNotFound is returned when the backend does not know the order.
	ErrOrderNotFound = errors.New("order not found")
	// ErrUnauthorized is returned on a 401, distinct from business failures:
	// the operator must re-authenticate rather than retry.
	ErrUnauthorized = errors.New("backend rejected credentials")
)

// StatusSnapshot is the authoritative fulfillment state of one order, as
// reported by the marketplace status endpoint.
type StatusSnapshot struct {
	// Status is the raw order-level status string.
	Status string `json:"status"`
	// ItemStatuses are the per-item warehouse sub-statuses.
	ItemStatuses []ItemStatusEntry `json:"item_statuses"`
}

// ItemStatusEntry pairs a line item with its warehouse sub-status.
type ItemStatusEntry struct {
	// ItemID identifies the line item within the order.
	ItemID int `json:"item_id"`
	// Status is the raw sub-status string.
	Status string `json:"status"`
}

// OrderBackend defines the marketplace REST operations the tracker depends on.
// This is a Secondary Port (Driven Port). Implementations receive backend
// order ids; the display-id offset is a presentation concern layered above.
type OrderBackend interface {
	// ListOrders retrieves the full order collection.
	ListOrders(ctx context.Context) ([]domain.Order, error)

	// FetchStatus retrieves the authoritative status snapshot for one order.
	FetchStatus(ctx context.Context, orderID int) (*StatusSnapshot, error)

	// UpdateStatus requests the order-level status transition on the backend.
	UpdateStatus(ctx context.Context, orderID int, status domain.Status) error

	// ConfirmItem acknowledges warehouse shipment of a single line item.
	ConfirmItem(ctx context.Context, orderID, itemID int) error

	// MarkSent dispatches the entire order to the warehouse in one action.
	MarkSent(ctx context.Context, orderID int) error
}
