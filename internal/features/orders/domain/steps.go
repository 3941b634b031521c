package domain

// ProgressStep is one cell of the 4-step fulfillment progress bar.
// Steps are derived from an order's status on demand and never persisted.
type ProgressStep struct {
	// Label is the human-readable step name (e.g., "Sent to Warehouse").
	Label string `json:"label"`
	// StatusKey is the canonical status the step represents.
	StatusKey Status `json:"status_key"`
	// IsActive is true only for the single step matching the current status.
	IsActive bool `json:"is_active"`
	// IsComplete is true for every step at or before the current one.
	IsComplete bool `json:"is_complete"`
}

// stepLabels maps each progression status to its display label.
var stepLabels = map[Status]string{
	StatusPending:            "Pending",
	StatusSentToWarehouse:    "Sent to Warehouse",
	StatusConfirmedWarehouse: "Confirmed Warehouse",
	StatusDelivered:          "Delivered",
}

// DeriveSteps maps a raw status string to the renderable step list and the
// index of the current step. Pure and deterministic: unrecognized strings
// (including Cancelled, which renders as a badge rather than a bar step)
// fall back to index 0.
func DeriveSteps(rawStatus string) ([]ProgressStep, int) {
	current := ParseStatus(rawStatus).StepIndex()

	steps := make([]ProgressStep, 0, len(progression))
	for i, st := range progression {
		steps = append(steps, ProgressStep{
			Label:      stepLabels[st],
			StatusKey:  st,
			IsActive:   i == current,
			IsComplete: i <= current,
		})
	}
	return steps, current
}
