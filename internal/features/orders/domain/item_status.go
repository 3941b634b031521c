package domain

import "strings"

// ItemStatus is the warehouse sub-status of a single line item. It advances
// on a finer scale than the parent order: the bulk mark-sent action moves
// every item to ItemSentToWarehouse, and the per-item confirmation moves one
// item to ItemShipped. The two are sequential sub-states, not synonyms.
type ItemStatus string

const (
	// ItemPending mirrors a parent order that has not reached the warehouse.
	ItemPending ItemStatus = "pending"
	// ItemSentToWarehouse indicates the item left with the bulk warehouse dispatch.
	ItemSentToWarehouse ItemStatus = "sent to warehouse"
	// ItemShipped indicates the warehouse individually confirmed the item.
	ItemShipped ItemStatus = "shipped"
)

// ParseItemStatus maps a free-text sub-status to the ItemStatus scale.
// Unrecognized strings pass through lowercased so inherited order statuses
// (e.g., "confirmed warehouse") stay displayable.
func ParseItemStatus(raw string) ItemStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "pending":
		return ItemPending
	case "sent to warehouse":
		return ItemSentToWarehouse
	case "shipped":
		return ItemShipped
	default:
		return ItemStatus(s)
	}
}

// Confirmed reports whether the item's shipment has been individually
// confirmed by the warehouse.
func (s ItemStatus) Confirmed() bool {
	return s == ItemShipped
}
