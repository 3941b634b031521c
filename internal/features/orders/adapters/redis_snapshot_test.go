package adapters

import (
	"context"
	"testing"
	"time"

	"fulfillment-tracker/internal/core/cache"
	"fulfillment-tracker/internal/features/orders/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnapshotRepo(t *testing.T) *RedisSnapshotRepository {
	t.Helper()
	mr := miniredis.RunT(t)

	adapter, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return NewRedisSnapshotRepository(adapter, 5*time.Minute)
}

// TestRedisSnapshotRepository_SaveLoad verifies the order list round-trips
// through the cache.
func TestRedisSnapshotRepository_SaveLoad(t *testing.T) {
	repo := newSnapshotRepo(t)
	ctx := context.Background()

	orders := []domain.Order{
		{ID: 5, Status: "pending", CustomerName: "Jane Doe", Items: []domain.OrderItem{{ID: 42, Quantity: 2}}},
		{ID: 6, Status: "delivered", CustomerName: "John Roe"},
	}

	require.NoError(t, repo.Save(ctx, orders))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 5, loaded[0].ID)
	assert.Equal(t, "Jane Doe", loaded[0].CustomerName)
	require.Len(t, loaded[0].Items, 1)
	assert.Equal(t, 42, loaded[0].Items[0].ID)
}

// TestRedisSnapshotRepository_LoadMiss verifies a cold cache yields no
// snapshot and no error.
func TestRedisSnapshotRepository_LoadMiss(t *testing.T) {
	repo := newSnapshotRepo(t)

	loaded, err := repo.Load(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}
