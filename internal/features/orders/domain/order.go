package domain

import (
	"fmt"
	"time"
)

// DisplayIDOffset is added to backend order ids for display and routing
// ("#1005" is backend order 5). It must be subtracted again before any
// request back to the marketplace backend.
const DisplayIDOffset = 1000

// Order represents a customer purchase tracked through the fulfillment lifecycle.
// Orders are owned by the marketplace backend; this is a read projection.
type Order struct {
	// ID is the backend-assigned unique identifier.
	ID int `json:"id"`
	// Status is the raw fulfillment status as reported by the backend.
	Status string `json:"status"`
	// CustomerName is the purchaser's full name.
	CustomerName string `json:"customer_name"`
	// CustomerEmail is the purchaser's contact email.
	CustomerEmail string `json:"customer_email"`
	// CustomerPhone is the purchaser's contact phone number.
	CustomerPhone string `json:"customer_phone"`
	// ProductName is the name of the primary product on the order.
	ProductName string `json:"product_name"`
	// ProductCategory is the catalog category of the primary product.
	ProductCategory string `json:"product_category"`
	// PaymentStatus is the backend-reported payment state (e.g., "Paid").
	PaymentStatus string `json:"payment_status"`
	// ToAddress is the delivery address.
	ToAddress string `json:"to_address"`
	// TotalAmount is the order total in the marketplace currency.
	TotalAmount float64 `json:"total_amount"`
	// CreatedAt is the creation timestamp, immutable after creation.
	CreatedAt BackendTime `json:"created_at"`
	// EstimatedShippingDate is the optional promised delivery date.
	EstimatedShippingDate BackendTime `json:"estimated_shipping_date"`
	// Items are the line items in insertion order.
	Items []OrderItem `json:"items"`
}

// OrderItem is an individual line item within an order.
type OrderItem struct {
	// ID is unique within the parent order's items.
	ID int `json:"id"`
	// ProductID is a weak reference into the external product catalog.
	ProductID int `json:"product"`
	// ProductName is the display name of the product.
	ProductName string `json:"product_name"`
	// ProductImageURL is the catalog image for the product.
	ProductImageURL string `json:"product_image_url"`
	// Quantity is the number of units purchased. Always positive.
	Quantity int `json:"quantity"`
	// Status is the per-item warehouse sub-status; empty until the item is
	// individually tracked.
	Status string `json:"status"`
}

// DisplayID returns the operator-facing id for a backend order id.
func DisplayID(backendID int) int {
	return backendID + DisplayIDOffset
}

// BackendID returns the backend order id for an operator-facing display id.
func BackendID(displayID int) int {
	return displayID - DisplayIDOffset
}

// DisplayNumber formats the operator-facing order number, e.g., "#1005".
func (o Order) DisplayNumber() string {
	return fmt.Sprintf("#%d", DisplayID(o.ID))
}

// ParsedStatus returns the order's status mapped to the closed Status set.
func (o Order) ParsedStatus() Status {
	return ParseStatus(o.Status)
}

// EffectiveItemStatus resolves an item's warehouse sub-status.
// An item without its own sub-status inherits the parent order's status;
// once the parent is Delivered every item is implicitly shipped, regardless
// of any stale pre-shipment sub-status.
func (o Order) EffectiveItemStatus(item OrderItem) ItemStatus {
	if o.ParsedStatus() == StatusDelivered {
		return ItemShipped
	}
	if item.Status != "" {
		return ParseItemStatus(item.Status)
	}
	return ItemStatus(o.ParsedStatus())
}

// Age returns the elapsed time since the order was created, at the given
// reference instant.
func (o Order) Age(now time.Time) time.Duration {
	return now.Sub(time.Time(o.CreatedAt))
}
