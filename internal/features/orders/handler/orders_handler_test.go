package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"
	"fulfillment-tracker/internal/features/orders/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend is a scriptable OrderBackend for testing.
type mockBackend struct {
	orders  []domain.Order
	listErr error
}

func (m *mockBackend) ListOrders(ctx context.Context) ([]domain.Order, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.orders, nil
}

func (m *mockBackend) FetchStatus(ctx context.Context, orderID int) (*ports.StatusSnapshot, error) {
	return nil, nil
}

func (m *mockBackend) UpdateStatus(ctx context.Context, orderID int, status domain.Status) error {
	return nil
}

func (m *mockBackend) ConfirmItem(ctx context.Context, orderID, itemID int) error {
	return nil
}

func (m *mockBackend) MarkSent(ctx context.Context, orderID int) error {
	return nil
}

func sampleOrders() []domain.Order {
	return []domain.Order{
		{
			ID:           5,
			Status:       "pending",
			CustomerName: "Alice Smith",
			TotalAmount:  120,
			CreatedAt:    domain.BackendTime(time.Now().Add(-26 * time.Hour)),
			Items:        []domain.OrderItem{{ID: 1, ProductName: "Walnut Desk"}},
		},
		{
			ID:           6,
			Status:       "delivered",
			CustomerName: "Bob Jones",
			TotalAmount:  80,
			CreatedAt:    domain.BackendTime(time.Now().Add(-2 * time.Hour)),
			Items:        []domain.OrderItem{{ID: 2, ProductName: "Oak Shelf"}},
		},
	}
}

func newTestApp(t *testing.T, backend *mockBackend) *fiber.App {
	t.Helper()

	st := store.NewOrdersStore(backend, nil)
	if backend.listErr == nil {
		require.NoError(t, st.Refresh(context.Background()))
	}

	h := NewOrdersHandler(st)

	app := fiber.New()
	app.Get("/orders", h.ListOrders)
	app.Post("/orders/refresh", h.RefreshOrders)
	return app
}

// TestListOrders_Defaults verifies the default projection is date
// descending with display numbers and ages rendered.
func TestListOrders_Defaults(t *testing.T) {
	app := newTestApp(t, &mockBackend{orders: sampleOrders()})

	resp, err := app.Test(httptest.NewRequest("GET", "/orders", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result ListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.Total)
	require.Len(t, result.Orders, 2)
	assert.Equal(t, "#1006", result.Orders[0].OrderNumber)
	assert.Equal(t, "#1005", result.Orders[1].OrderNumber)
	assert.Equal(t, "Walnut Desk", result.Orders[1].ProductName)
	assert.NotEmpty(t, result.Orders[0].Age)
}

// TestListOrders_SearchAndFilter verifies query parameters reach the
// projection.
func TestListOrders_SearchAndFilter(t *testing.T) {
	app := newTestApp(t, &mockBackend{orders: sampleOrders()})

	resp, err := app.Test(httptest.NewRequest("GET", "/orders?search=alice", nil))
	require.NoError(t, err)

	var result ListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Orders, 1)
	assert.Equal(t, "Alice Smith", result.Orders[0].CustomerName)
	assert.Equal(t, 2, result.Total)

	resp, err = app.Test(httptest.NewRequest("GET", "/orders?status=delivered", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Orders, 1)
	assert.Equal(t, "#1006", result.Orders[0].OrderNumber)
}

// TestListOrders_SortByAmountAsc verifies explicit sort parameters.
func TestListOrders_SortByAmountAsc(t *testing.T) {
	app := newTestApp(t, &mockBackend{orders: sampleOrders()})

	req := httptest.NewRequest("GET", "/orders?sort_by=amount&sort_order=asc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	var result ListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Orders, 2)
	assert.Equal(t, float64(80), result.Orders[0].TotalAmount)
	assert.Equal(t, float64(120), result.Orders[1].TotalAmount)
}

// TestRefreshOrders_Success verifies a refresh re-fetches and returns the
// fresh list.
func TestRefreshOrders_Success(t *testing.T) {
	backend := &mockBackend{orders: sampleOrders()}
	app := newTestApp(t, backend)

	backend.orders = append(backend.orders, domain.Order{
		ID:           7,
		Status:       "pending",
		CustomerName: "Cara West",
		CreatedAt:    domain.BackendTime(time.Now()),
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/orders/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result ListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3, result.Total)
}

// TestRefreshOrders_BackendDown verifies the refresh failure path.
func TestRefreshOrders_BackendDown(t *testing.T) {
	backend := &mockBackend{listErr: errors.New("connection refused")}
	app := newTestApp(t, backend)

	resp, err := app.Test(httptest.NewRequest("POST", "/orders/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
