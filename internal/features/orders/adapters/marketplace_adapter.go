package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fulfillment-tracker/internal/core/config"
	"fulfillment-tracker/internal/core/httpclient"
	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"
)

// MarketplaceAdapter implements the OrderBackend port against the
// marketplace REST API. All ids on the wire are backend ids; the display-id
// offset never reaches this layer.
type MarketplaceAdapter struct {
	// client is the bearer-authenticated HTTP client used for API requests.
	client *http.Client
	// baseURL is the marketplace API root.
	baseURL string
}

// NewMarketplaceAdapter creates a new MarketplaceAdapter.
func NewMarketplaceAdapter(cfg config.MarketplaceConfig) *MarketplaceAdapter {
	return &MarketplaceAdapter{
		client:  httpclient.NewBearerClient(cfg.Token, 10*time.Second),
		baseURL: cfg.URL,
	}
}

// ListOrders fetches the full order collection from GET /orders/list/.
func (a *MarketplaceAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := a.getJSON(ctx, a.baseURL+"/orders/list/", &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// FetchStatus fetches the authoritative status snapshot from GET /orders/{id}/status/.
func (a *MarketplaceAdapter) FetchStatus(ctx context.Context, orderID int) (*ports.StatusSnapshot, error) {
	var snapshot ports.StatusSnapshot
	url := fmt.Sprintf("%s/orders/%d/status/", a.baseURL, orderID)
	if err := a.getJSON(ctx, url, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to fetch status for order %d: %w", orderID, err)
	}
	return &snapshot, nil
}

// UpdateStatus requests the order-level transition via PATCH /orders/{id}/status/.
func (a *MarketplaceAdapter) UpdateStatus(ctx context.Context, orderID int, status domain.Status) error {
	url := fmt.Sprintf("%s/orders/%d/status/", a.baseURL, orderID)
	body := map[string]string{"status": string(status)}
	if err := a.sendJSON(ctx, http.MethodPatch, url, body); err != nil {
		return fmt.Errorf("failed to update status for order %d: %w", orderID, err)
	}
	return nil
}

// ConfirmItem acknowledges one item via POST /orders/{id}/confirm-warehouse/.
func (a *MarketplaceAdapter) ConfirmItem(ctx context.Context, orderID, itemID int) error {
	url := fmt.Sprintf("%s/orders/%d/confirm-warehouse/", a.baseURL, orderID)
	body := map[string]int{"item_id": itemID}
	if err := a.sendJSON(ctx, http.MethodPost, url, body); err != nil {
		return fmt.Errorf("failed to confirm item %d on order %d: %w", itemID, orderID, err)
	}
	return nil
}

// MarkSent dispatches the whole order via POST /orders/{id}/mark-sent/.
func (a *MarketplaceAdapter) MarkSent(ctx context.Context, orderID int) error {
	url := fmt.Sprintf("%s/orders/%d/mark-sent/", a.baseURL, orderID)
	if err := a.sendJSON(ctx, http.MethodPost, url, map[string]any{}); err != nil {
		return fmt.Errorf("failed to mark order %d sent: %w", orderID, err)
	}
	return nil
}

// HealthCheck verifies that the marketplace API is reachable and the
// configured credentials are accepted.
func (a *MarketplaceAdapter) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/orders/list/", nil)
	if err != nil {
		return fmt.Errorf("health check failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// getJSON executes an authenticated GET and decodes the JSON response.
func (a *MarketplaceAdapter) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// sendJSON executes an authenticated write with a JSON body, discarding any
// response payload: callers only need the 2xx/non-2xx outcome.
func (a *MarketplaceAdapter) sendJSON(ctx context.Context, method, url string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

// checkStatus maps a non-2xx response to the adapter error taxonomy.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ports.ErrUnauthorized
	case http.StatusNotFound:
		return ports.ErrOrderNotFound
	default:
		return fmt.Errorf("marketplace API returned status: %d", resp.StatusCode)
	}
}
