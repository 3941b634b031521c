package store

import (
	"context"
	"fmt"
	"sync"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"

	"go.uber.org/zap"
)

// SnapshotRepository persists the last fetched order list across restarts.
type SnapshotRepository interface {
	// Save stores the order list.
	Save(ctx context.Context, orders []domain.Order) error
	// Load retrieves the stored order list; a miss returns (nil, nil).
	Load(ctx context.Context) ([]domain.Order, error)
}

// OrdersStore is the single shared, observable cache of the order collection.
// Reads are synchronous snapshots; the collection only changes through
// Refresh, which re-fetches from the marketplace backend and notifies
// subscribers. Components never mutate the collection directly.
type OrdersStore struct {
	backend   ports.OrderBackend
	snapshots SnapshotRepository

	mu          sync.RWMutex
	orders      []domain.Order
	refreshed   bool
	subscribers []func()
}

// NewOrdersStore creates an OrdersStore backed by the given marketplace
// backend. snapshots may be nil to disable warm starts.
func NewOrdersStore(backend ports.OrderBackend, snapshots SnapshotRepository) *OrdersStore {
	return &OrdersStore{
		backend:   backend,
		snapshots: snapshots,
	}
}

// WarmStart serves the persisted snapshot, if any, until the first Refresh
// lands. It never fails the caller: a broken cache just means a cold start.
func (s *OrdersStore) WarmStart(ctx context.Context) {
	if s.snapshots == nil {
		return
	}

	orders, err := s.snapshots.Load(ctx)
	if err != nil {
		logger.Get().Warn("Failed to load order snapshot", zap.Error(err))
		return
	}
	if orders == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refreshed {
		s.orders = orders
		logger.Get().Info("Serving warm order snapshot", zap.Int("orders", len(orders)))
	}
}

// Refresh re-fetches the order collection from the backend, persists it, and
// notifies subscribers of the change.
func (s *OrdersStore) Refresh(ctx context.Context) error {
	orders, err := s.backend.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh orders: %w", err)
	}

	s.mu.Lock()
	s.orders = orders
	s.refreshed = true
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	if s.snapshots != nil {
		if err := s.snapshots.Save(ctx, orders); err != nil {
			logger.Get().Warn("Failed to persist order snapshot", zap.Error(err))
		}
	}

	for _, notify := range subs {
		notify()
	}

	return nil
}

// Snapshot returns a copy of the current order collection. Callers may
// filter and sort the returned slice freely.
func (s *OrdersStore) Snapshot() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Get returns the order with the given backend id.
func (s *OrdersStore) Get(orderID int) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return domain.Order{}, false
}

// Subscribe registers a callback invoked after every successful Refresh.
// Callbacks run on the refreshing goroutine and must not block.
func (s *OrdersStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
