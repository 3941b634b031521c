package handler

import (
	"time"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/projection"
	"fulfillment-tracker/internal/features/orders/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrdersHandler handles HTTP requests for the order list.
type OrdersHandler struct {
	store *store.OrdersStore
}

// NewOrdersHandler creates a new OrdersHandler.
func NewOrdersHandler(st *store.OrdersStore) *OrdersHandler {
	return &OrdersHandler{
		store: st,
	}
}

// OrderRow is one row of the operator-facing order list.
type OrderRow struct {
	// OrderID is the backend order id.
	OrderID int `json:"order_id"`
	// OrderNumber is the display number, e.g., "#1005".
	OrderNumber string `json:"order_number"`
	// Status is the raw backend status label.
	Status string `json:"status"`
	// CustomerName is the buyer's name.
	CustomerName string `json:"customer_name"`
	// ProductName is the first line item's product name.
	ProductName string `json:"product_name"`
	// TotalAmount is the order total.
	TotalAmount float64 `json:"total_amount"`
	// CreatedAt is the order creation timestamp.
	CreatedAt domain.BackendTime `json:"created_at"`
	// Age is the human-readable time since creation, e.g., "2d 4h".
	Age string `json:"age"`
}

// ListResponse wraps the projected rows with the total collection size.
type ListResponse struct {
	// Orders are the rows after search, filter and sort.
	Orders []OrderRow `json:"orders"`
	// Total is the collection size before projection.
	Total int `json:"total"`
}

// ListOrders godoc
// @Summary List orders
// @Description Returns the cached order collection filtered, searched and sorted for display
// @Tags orders
// @Produce json
// @Param search query string false "Case-insensitive substring over id, customer and product fields"
// @Param status query string false "Status filter; 'All' or empty disables it"
// @Param sort_by query string false "Sort key: date, amount, customer, status or id" default(date)
// @Param sort_order query string false "asc or desc" default(desc)
// @Success 200 {object} ListResponse
// @Router /orders [get]
func (h *OrdersHandler) ListOrders(c *fiber.Ctx) error {
	orders := h.store.Snapshot()

	projected := projection.Project(orders, projection.Options{
		SearchTerm:   c.Query("search"),
		StatusFilter: c.Query("status"),
		SortBy:       c.Query("sort_by", projection.SortByDate),
		SortOrder:    c.Query("sort_order", projection.SortDesc),
	})

	now := time.Now()
	rows := make([]OrderRow, 0, len(projected))
	for _, o := range projected {
		row := OrderRow{
			OrderID:      o.ID,
			OrderNumber:  o.DisplayNumber(),
			Status:       o.Status,
			CustomerName: o.CustomerName,
			TotalAmount:  o.TotalAmount,
			CreatedAt:    o.CreatedAt,
			Age:          projection.FormatAge(o, now),
		}
		if len(o.Items) > 0 {
			row.ProductName = o.Items[0].ProductName
		} else {
			row.ProductName = o.ProductName
		}
		rows = append(rows, row)
	}

	return c.JSON(ListResponse{
		Orders: rows,
		Total:  len(orders),
	})
}

// RefreshOrders godoc
// @Summary Refresh the order collection
// @Description Re-fetches every order from the marketplace and updates the shared cache
// @Tags orders
// @Produce json
// @Success 200 {object} ListResponse
// @Failure 502 {object} map[string]string
// @Router /orders/refresh [post]
func (h *OrdersHandler) RefreshOrders(c *fiber.Ctx) error {
	if err := h.store.Refresh(c.UserContext()); err != nil {
		logger.Get().Error("Failed to refresh orders", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "could not reach the marketplace",
		})
	}

	return h.ListOrders(c)
}
