package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fulfillment-tracker/internal/core/config"
	"fulfillment-tracker/internal/core/logger"
	orderdomain "fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"
	trackdomain "fulfillment-tracker/internal/features/tracker/domain"

	"go.uber.org/zap"
)

var (
	// ErrAlreadyInProgress is returned on a reentrant action while one is
	// pending for the same order or item. Reflects a double-click, not a
	// fault; callers surface it silently.
	ErrAlreadyInProgress = errors.New("action already in progress")
	// ErrOrderNotInWarehouse is returned when a per-item confirmation is
	// requested before the parent order reached the warehouse.
	ErrOrderNotInWarehouse = errors.New("order has not been sent to warehouse")
)

// OrdersStore is the slice of the shared order store the tracker depends on.
type OrdersStore interface {
	// Get returns the order with the given backend id.
	Get(orderID int) (orderdomain.Order, bool)
	// Refresh re-fetches the order collection and notifies subscribers.
	Refresh(ctx context.Context) error
}

// TrackerService owns the per-order progress trackers: it polls the
// marketplace backend for authoritative status, mediates operator-initiated
// transitions with optimistic overlays and rollback, and tracks per-item
// warehouse confirmations.
type TrackerService struct {
	backend ports.OrderBackend
	store   OrdersStore
	cfg     config.TrackerConfig

	mu       sync.Mutex
	trackers map[int]*orderTracker
}

// orderTracker is the transient local state for one tracked order. The
// service mutex serializes all access.
type orderTracker struct {
	rec *trackdomain.Reconciler
	// rawStatus is the last status string accepted from the backend.
	rawStatus string
	// items holds per-item warehouse sub-statuses.
	items map[int]orderdomain.ItemStatus
	// itemBusy marks items with a confirmation in flight.
	itemBusy map[int]bool
	// timedOut flags a reconciliation timeout until the next poll converges.
	timedOut bool

	advanceInFlight  bool
	markSentInFlight bool

	poll *PollHandle
}

// NewTrackerService creates a TrackerService over the given backend and store.
func NewTrackerService(backend ports.OrderBackend, store OrdersStore, cfg config.TrackerConfig) *TrackerService {
	return &TrackerService{
		backend:  backend,
		store:    store,
		cfg:      cfg,
		trackers: make(map[int]*orderTracker),
	}
}

// Track begins tracking an order: its tracker is seeded from the shared
// store and a poller is started if none is running. Idempotent.
func (s *TrackerService) Track(orderID int) error {
	s.mu.Lock()
	tr, err := s.ensureTrackerLocked(orderID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	startPoll := tr.poll == nil || tr.poll.Stopped()
	if startPoll {
		tr.poll = s.startPolling(orderID)
	}
	s.mu.Unlock()
	return nil
}

// Untrack stops the order's poller. The tracked state is kept so a revisit
// resumes where it left off. Safe to call for unknown orders.
func (s *TrackerService) Untrack(orderID int) {
	s.mu.Lock()
	tr, ok := s.trackers[orderID]
	var poll *PollHandle
	if ok && tr.poll != nil {
		poll = tr.poll
		tr.poll = nil
	}
	s.mu.Unlock()

	if poll != nil {
		poll.Stop()
	}
}

// Advance moves the order exactly one step forward: the next status is
// computed from the transition table, applied optimistically, then written
// to the backend. A rejected write rolls the visible step back to the prior
// confirmed value.
func (s *TrackerService) Advance(ctx context.Context, orderID int) error {
	s.mu.Lock()
	tr, err := s.ensureTrackerLocked(orderID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if tr.advanceInFlight {
		s.mu.Unlock()
		return ErrAlreadyInProgress
	}

	current := s.visibleStatusLocked(tr)
	next, nerr := current.Next()
	if nerr != nil {
		s.mu.Unlock()
		return fmt.Errorf("cannot advance from %q: %w", current, orderdomain.ErrInvalidTransition)
	}

	tr.advanceInFlight = true
	tr.rec.BeginOptimistic(next.StepIndex())
	s.mu.Unlock()

	werr := s.backend.UpdateStatus(ctx, orderID, next)

	s.mu.Lock()
	tr.advanceInFlight = false
	if werr != nil {
		tr.rec.Rollback()
		s.mu.Unlock()
		logger.Get().Error("Status advance rejected, rolling back",
			zap.Int("order_id", orderID),
			zap.String("attempted_status", string(next)),
			zap.Error(werr),
		)
		return fmt.Errorf("failed to advance order %d: %w", orderID, werr)
	}
	tr.rec.ConfirmWrite()
	tr.rawStatus = string(next)
	s.mu.Unlock()

	logger.Get().Info("Order advanced",
		zap.Int("order_id", orderID),
		zap.String("status", string(next)),
	)
	s.refreshStore(ctx, orderID)
	return nil
}

// ConfirmItem acknowledges warehouse shipment of a single line item. The
// parent order must currently be sent to warehouse; each item carries its
// own in-flight flag and there is no automatic retry on failure.
func (s *TrackerService) ConfirmItem(ctx context.Context, orderID, itemID int) error {
	s.mu.Lock()
	tr, err := s.ensureTrackerLocked(orderID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if s.visibleStatusLocked(tr) != orderdomain.StatusSentToWarehouse {
		s.mu.Unlock()
		return ErrOrderNotInWarehouse
	}
	if tr.itemBusy[itemID] {
		s.mu.Unlock()
		return ErrAlreadyInProgress
	}
	tr.itemBusy[itemID] = true
	s.mu.Unlock()

	werr := s.backend.ConfirmItem(ctx, orderID, itemID)

	s.mu.Lock()
	delete(tr.itemBusy, itemID)
	if werr != nil {
		s.mu.Unlock()
		logger.Get().Error("Item confirmation failed",
			zap.Int("order_id", orderID),
			zap.Int("item_id", itemID),
			zap.Error(werr),
		)
		return fmt.Errorf("failed to confirm item %d: %w", itemID, werr)
	}
	tr.items[itemID] = orderdomain.ItemShipped
	s.mu.Unlock()

	s.refreshStore(ctx, orderID)
	return nil
}

// MarkSent dispatches the entire order to the warehouse as one coarse
// action. On success every item's sub-status moves to sent-to-warehouse in a
// single local pass; the order-level status catches up via the next poll.
func (s *TrackerService) MarkSent(ctx context.Context, orderID int) error {
	s.mu.Lock()
	tr, err := s.ensureTrackerLocked(orderID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if tr.markSentInFlight {
		s.mu.Unlock()
		return ErrAlreadyInProgress
	}
	tr.markSentInFlight = true
	s.mu.Unlock()

	werr := s.backend.MarkSent(ctx, orderID)

	s.mu.Lock()
	tr.markSentInFlight = false
	if werr != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to mark order %d sent: %w", orderID, werr)
	}
	for id := range tr.items {
		tr.items[id] = orderdomain.ItemSentToWarehouse
	}
	s.mu.Unlock()

	s.refreshStore(ctx, orderID)
	return nil
}

// Progress returns the renderable tracking state for an order.
func (s *TrackerService) Progress(orderID int) (*ProgressView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, err := s.ensureTrackerLocked(orderID)
	if err != nil {
		return nil, err
	}
	return s.progressViewLocked(orderID, tr), nil
}

// PollOnce performs a single poll cycle for an order: fetch the
// authoritative snapshot and reconcile it with any optimistic overlay.
// Fetch failures are logged and absorbed; the next cycle retries.
func (s *TrackerService) PollOnce(ctx context.Context, orderID int) {
	snapshot, err := s.backend.FetchStatus(ctx, orderID)
	if err != nil {
		logger.Get().Warn("Status poll failed, will retry",
			zap.Int("order_id", orderID),
			zap.Error(err),
		)
		return
	}
	// A fetch that completes after the poller stopped must not apply state.
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := s.trackers[orderID]
	if !ok {
		return
	}

	status := orderdomain.ParseStatus(snapshot.Status)
	outcome := tr.rec.ApplyServerIndex(status.StepIndex())
	switch outcome {
	case trackdomain.OutcomeHeld:
		// Keep showing the optimistic index; the raw status is withheld too
		// so the visible state stays coherent.
		return
	case trackdomain.OutcomeTimedOut:
		tr.timedOut = true
		logger.Get().Warn("Optimistic state failed to converge, trusting server",
			zap.Int("order_id", orderID),
			zap.String("server_status", snapshot.Status),
		)
	default:
		tr.timedOut = false
	}

	tr.rawStatus = snapshot.Status
	for _, entry := range snapshot.ItemStatuses {
		tr.items[entry.ItemID] = orderdomain.ParseItemStatus(entry.Status)
	}
	if status == orderdomain.StatusDelivered {
		for id := range tr.items {
			tr.items[id] = orderdomain.ItemShipped
		}
	}
}

// ensureTrackerLocked returns the tracker for an order, seeding a new one
// from the shared store when first requested. Caller holds s.mu.
func (s *TrackerService) ensureTrackerLocked(orderID int) (*orderTracker, error) {
	if tr, ok := s.trackers[orderID]; ok {
		return tr, nil
	}

	order, ok := s.store.Get(orderID)
	if !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, ports.ErrOrderNotFound)
	}

	tr := &orderTracker{
		rec:       trackdomain.NewReconciler(order.ParsedStatus().StepIndex(), s.cfg.ReconcileCycles),
		rawStatus: order.Status,
		items:     make(map[int]orderdomain.ItemStatus, len(order.Items)),
		itemBusy:  make(map[int]bool),
	}
	for _, item := range order.Items {
		tr.items[item.ID] = order.EffectiveItemStatus(item)
	}
	s.trackers[orderID] = tr
	return tr, nil
}

// visibleStatusLocked maps the reconciled visible index back to a status.
// Cancelled orders report Cancelled regardless of index. Caller holds s.mu.
func (s *TrackerService) visibleStatusLocked(tr *orderTracker) orderdomain.Status {
	if orderdomain.ParseStatus(tr.rawStatus) == orderdomain.StatusCancelled {
		return orderdomain.StatusCancelled
	}
	return orderdomain.StepForIndex(tr.rec.VisibleIndex())
}

// refreshStore propagates a successful write to the shared store so list
// views pick up consistent data. Best effort: a failed refresh is logged and
// the next poll or refresh heals it.
func (s *TrackerService) refreshStore(ctx context.Context, orderID int) {
	if err := s.store.Refresh(ctx); err != nil {
		logger.Get().Warn("Store refresh after write failed",
			zap.Int("order_id", orderID),
			zap.Error(err),
		)
	}
}

// startPolling launches the re-armed poll loop for one order and returns its
// handle. The loop issues one fetch at a time, so a slow response throttles
// the effective rate instead of stacking requests.
func (s *TrackerService) startPolling(orderID int) *PollHandle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &PollHandle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	interval := s.cfg.PollInterval()
	if interval <= 0 {
		interval = 5 * time.Second
	}

	go func() {
		defer close(h.done)
		for {
			s.PollOnce(ctx, orderID)

			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()

	return h
}

// PollHandle controls one order's poll loop.
type PollHandle struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Stop cancels the poll loop and waits for it to exit. Idempotent.
func (h *PollHandle) Stop() {
	h.stopOnce.Do(h.cancel)
	<-h.done
}

// Stopped reports whether the poll loop has exited.
func (h *PollHandle) Stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
