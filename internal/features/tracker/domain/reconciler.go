package domain

// Phase is the reconciliation state of one tracked order.
type Phase string

const (
	// PhaseIdle means no optimistic overlay is held; the server is truth.
	PhaseIdle Phase = "idle"
	// PhaseOptimisticPending means an optimistic step is shown while the
	// write is still in flight.
	PhaseOptimisticPending Phase = "optimistic_pending"
	// PhaseConfirmed means the backend accepted the write and the overlay is
	// held until a poll confirms the new index.
	PhaseConfirmed Phase = "confirmed"
	// PhaseReconciling means a poll reported an older index than the held
	// overlay; divergent cycles are being counted.
	PhaseReconciling Phase = "reconciling"
)

// Outcome classifies the effect of applying one poll response.
type Outcome int

const (
	// OutcomeAccepted: no overlay was held, the server index was applied.
	OutcomeAccepted Outcome = iota
	// OutcomeConverged: the server caught up with the overlay, which is now
	// cleared.
	OutcomeConverged
	// OutcomeHeld: the server still lags the overlay; the optimistic index
	// stays visible.
	OutcomeHeld
	// OutcomeTimedOut: the overlay failed to converge within the allowed
	// cycles; the server index won and the overlay was discarded.
	OutcomeTimedOut
)

// Reconciler is the per-order state machine that mediates between
// locally-applied optimistic step changes and the authoritative index
// reported by polling. It is not safe for concurrent use; the owning
// service serializes access.
type Reconciler struct {
	phase           Phase
	confirmedIndex  int
	optimisticIndex int
	divergentCycles int
	maxCycles       int
}

// NewReconciler creates a reconciler starting at the given confirmed step
// index. maxCycles bounds how many divergent poll cycles an overlay may
// survive before the server is trusted.
func NewReconciler(initialIndex, maxCycles int) *Reconciler {
	if maxCycles < 1 {
		maxCycles = 1
	}
	return &Reconciler{
		phase:           PhaseIdle,
		confirmedIndex:  initialIndex,
		optimisticIndex: -1,
		maxCycles:       maxCycles,
	}
}

// Phase returns the current reconciliation phase.
func (r *Reconciler) Phase() Phase {
	return r.phase
}

// VisibleIndex is the step index the operator sees: the optimistic overlay
// when one is held, the confirmed server index otherwise.
func (r *Reconciler) VisibleIndex() int {
	if r.optimisticIndex >= 0 {
		return r.optimisticIndex
	}
	return r.confirmedIndex
}

// ConfirmedIndex is the last index accepted from the server.
func (r *Reconciler) ConfirmedIndex() int {
	return r.confirmedIndex
}

// BeginOptimistic applies an optimistic overlay at the given index, pending
// backend confirmation.
func (r *Reconciler) BeginOptimistic(index int) {
	r.optimisticIndex = index
	r.divergentCycles = 0
	r.phase = PhaseOptimisticPending
}

// ConfirmWrite records that the backend accepted the optimistic write. The
// overlay stays visible until a poll response converges on it.
func (r *Reconciler) ConfirmWrite() {
	if r.phase == PhaseOptimisticPending {
		r.phase = PhaseConfirmed
	}
}

// Rollback discards the optimistic overlay after a failed write, reverting
// the visible index to the last confirmed value. Compensating action, not a
// retry.
func (r *Reconciler) Rollback() {
	r.optimisticIndex = -1
	r.divergentCycles = 0
	r.phase = PhaseIdle
}

// ApplyServerIndex reconciles one poll response against the current state.
//
// With no overlay held the server index is applied verbatim. With an overlay
// held, a server index at or above the overlay clears it (the server caught
// up); a lower index is held off so the UI never regresses, until maxCycles
// divergent cycles elapse, at which point the server wins and the overlay is
// discarded.
func (r *Reconciler) ApplyServerIndex(serverIndex int) Outcome {
	if r.optimisticIndex < 0 {
		r.confirmedIndex = serverIndex
		r.phase = PhaseIdle
		return OutcomeAccepted
	}

	if serverIndex >= r.optimisticIndex {
		r.confirmedIndex = serverIndex
		r.optimisticIndex = -1
		r.divergentCycles = 0
		r.phase = PhaseIdle
		return OutcomeConverged
	}

	r.divergentCycles++
	if r.divergentCycles >= r.maxCycles {
		r.confirmedIndex = serverIndex
		r.optimisticIndex = -1
		r.divergentCycles = 0
		r.phase = PhaseIdle
		return OutcomeTimedOut
	}

	r.phase = PhaseReconciling
	return OutcomeHeld
}
