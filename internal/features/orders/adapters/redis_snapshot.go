package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fulfillment-tracker/internal/core/cache"
	"fulfillment-tracker/internal/features/orders/domain"
)

const snapshotCacheKey = "orders_snapshot"

// RedisSnapshotRepository persists the last fetched order list so the store
// can serve a warm snapshot on startup before the first backend refresh lands.
type RedisSnapshotRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisSnapshotRepository creates a new RedisSnapshotRepository.
func NewRedisSnapshotRepository(c cache.Cache, ttl time.Duration) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{
		cache: c,
		ttl:   ttl,
	}
}

// Save stores the order list in the cache.
func (r *RedisSnapshotRepository) Save(ctx context.Context, orders []domain.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to marshal order snapshot: %w", err)
	}

	if err := r.cache.Set(ctx, snapshotCacheKey, data, r.ttl); err != nil {
		return fmt.Errorf("failed to save order snapshot to cache: %w", err)
	}

	return nil
}

// Load retrieves the cached order list. A cache miss returns (nil, nil).
func (r *RedisSnapshotRepository) Load(ctx context.Context) ([]domain.Order, error) {
	data, err := r.cache.Get(ctx, snapshotCacheKey)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order snapshot from cache: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var orders []domain.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order snapshot: %w", err)
	}

	return orders, nil
}
