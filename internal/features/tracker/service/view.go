package service

import (
	orderdomain "fulfillment-tracker/internal/features/orders/domain"
	trackdomain "fulfillment-tracker/internal/features/tracker/domain"
)

// ProgressView is the renderable tracking state of one order.
type ProgressView struct {
	// OrderID is the backend order id.
	OrderID int `json:"order_id"`
	// OrderNumber is the operator-facing display number, e.g., "#1005".
	OrderNumber string `json:"order_number"`
	// Status is the visible canonical status (optimistic overlay included).
	Status orderdomain.Status `json:"status"`
	// Steps is the 4-step progress bar derived from the visible status.
	Steps []orderdomain.ProgressStep `json:"steps"`
	// CurrentIndex is the visible step index.
	CurrentIndex int `json:"current_index"`
	// Phase is the reconciliation phase for this order.
	Phase trackdomain.Phase `json:"phase"`
	// Cancelled renders as a badge, never as a bar step.
	Cancelled bool `json:"cancelled"`
	// ReconcileWarning is set after a reconciliation timeout discarded an
	// optimistic overlay in favor of the server.
	ReconcileWarning bool `json:"reconcile_warning"`
	// Completed is true once the order reached the final step.
	Completed bool `json:"completed"`
	// Items are the per-item warehouse rows.
	Items []ItemView `json:"items"`
}

// ItemView is the warehouse row for one line item.
type ItemView struct {
	// ItemID identifies the line item.
	ItemID int `json:"item_id"`
	// Status is the item's warehouse sub-status.
	Status orderdomain.ItemStatus `json:"status"`
	// Confirmed is true once the warehouse individually confirmed shipment.
	Confirmed bool `json:"confirmed"`
	// Confirmable is true while the confirm action is offered for the item.
	Confirmable bool `json:"confirmable"`
	// Busy is true while a confirmation is in flight for the item.
	Busy bool `json:"busy"`
}

// progressViewLocked assembles the view for one tracker. Caller holds s.mu.
func (s *TrackerService) progressViewLocked(orderID int, tr *orderTracker) *ProgressView {
	status := s.visibleStatusLocked(tr)
	steps, current := orderdomain.DeriveSteps(string(status))

	view := &ProgressView{
		OrderID:          orderID,
		OrderNumber:      orderdomain.Order{ID: orderID}.DisplayNumber(),
		Status:           status,
		Steps:            steps,
		CurrentIndex:     current,
		Phase:            tr.rec.Phase(),
		Cancelled:        status == orderdomain.StatusCancelled,
		ReconcileWarning: tr.timedOut,
		Completed:        status == orderdomain.StatusDelivered,
	}

	inWarehouse := status == orderdomain.StatusSentToWarehouse
	order, ok := s.store.Get(orderID)
	if ok {
		// Walk the order's items so rows keep line order.
		for _, item := range order.Items {
			sub, tracked := tr.items[item.ID]
			if !tracked {
				sub = order.EffectiveItemStatus(item)
			}
			view.Items = append(view.Items, ItemView{
				ItemID:      item.ID,
				Status:      sub,
				Confirmed:   sub.Confirmed(),
				Confirmable: inWarehouse && !sub.Confirmed() && !tr.itemBusy[item.ID],
				Busy:        tr.itemBusy[item.ID],
			})
		}
	}

	return view
}
