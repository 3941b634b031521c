package handler

import (
	"errors"
	"strconv"

	"fulfillment-tracker/internal/core/httpclient"
	orderdomain "fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"
	"fulfillment-tracker/internal/features/tracker/service"

	"github.com/gofiber/fiber/v2"
)

// TrackerHandler handles HTTP requests for order progress operations.
// All routes take display order numbers; conversion to backend ids
// happens here and nowhere deeper.
type TrackerHandler struct {
	trackerService *service.TrackerService
}

// NewTrackerHandler creates a new TrackerHandler.
func NewTrackerHandler(trackerService *service.TrackerService) *TrackerHandler {
	return &TrackerHandler{
		trackerService: trackerService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// orderID parses the display order number from the route and converts it
// to a backend id. Numbers at or below the display offset cannot map to
// a real order.
func (h *TrackerHandler) orderID(c *fiber.Ctx) (int, error) {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil || number <= orderdomain.DisplayIDOffset {
		return 0, errors.New("invalid order number")
	}
	return orderdomain.BackendID(number), nil
}

// GetProgress godoc
// @Summary Get the progress view for an order
// @Description Returns the current step progression, reconciliation state and per-item confirmation view for a tracked order
// @Tags orders
// @Produce json
// @Param number path int true "Display order number (e.g. 1005)"
// @Success 200 {object} service.ProgressView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /orders/{number}/progress [get]
func (h *TrackerHandler) GetProgress(c *fiber.Ctx) error {
	orderID, err := h.orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}

	view, err := h.trackerService.Progress(orderID)
	if err != nil {
		return h.errorStatus(c, err)
	}

	return c.JSON(view)
}

// StartTracking godoc
// @Summary Start polling an order
// @Description Begins background status polling for the given order
// @Tags orders
// @Produce json
// @Param number path int true "Display order number"
// @Success 200 {object} service.ProgressView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /orders/{number}/track [post]
func (h *TrackerHandler) StartTracking(c *fiber.Ctx) error {
	orderID, err := h.orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}

	if err := h.trackerService.Track(orderID); err != nil {
		return h.errorStatus(c, err)
	}

	return h.respondWithProgress(c, orderID)
}

// StopTracking godoc
// @Summary Stop polling an order
// @Description Stops background status polling; tracked state is kept so tracking can resume
// @Tags orders
// @Param number path int true "Display order number"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Router /orders/{number}/track [delete]
func (h *TrackerHandler) StopTracking(c *fiber.Ctx) error {
	orderID, err := h.orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}

	h.trackerService.Untrack(orderID)
	return c.SendStatus(fiber.StatusNoContent)
}

// AdvanceStatus godoc
// @Summary Advance an order to its next status
// @Description Optimistically moves the order one step forward and persists the change to the marketplace, rolling back on failure
// @Tags orders
// @Produce json
// @Param number path int true "Display order number"
// @Success 200 {object} service.ProgressView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders/{number}/advance [post]
func (h *TrackerHandler) AdvanceStatus(c *fiber.Ctx) error {
	orderID, err := h.orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}

	if err := h.trackerService.Advance(c.UserContext(), orderID); err != nil {
		// A duplicate click is absorbed, not reported.
		if !errors.Is(err, service.ErrAlreadyInProgress) {
			return h.errorStatus(c, err)
		}
	}

	return h.respondWithProgress(c, orderID)
}

// ConfirmItem godoc
// @Summary Confirm a single item at the warehouse
// @Description Marks one order line as shipped once the warehouse has it
// @Tags orders
// @Produce json
// @Param number path int true "Display order number"
// @Param itemId path int true "Order item id"
// @Success 200 {object} service.ProgressView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders/{number}/items/{itemId}/confirm [post]
func (h *TrackerHandler) ConfirmItem(c *fiber.Ctx) error {
	orderID, err := h.orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}

	itemID, err := strconv.Atoi(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid item id",
			RayID:   c.Locals("requestid").(string),
		})
	}

	if err := h.trackerService.ConfirmItem(c.UserContext(), orderID, itemID); err != nil {
		if !errors.Is(err, service.ErrAlreadyInProgress) {
			return h.errorStatus(c, err)
		}
	}

	return h.respondWithProgress(c, orderID)
}

// MarkSent godoc
// @Summary Mark all items of an order as sent to warehouse
// @Description Bulk-marks every order line as sent in a single call
// @Tags orders
// @Produce json
// @Param number path int true "Display order number"
// @Success 200 {object} service.ProgressView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /orders/{number}/mark-sent [post]
func (h *TrackerHandler) MarkSent(c *fiber.Ctx) error {
	orderID, err := h.orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}

	if err := h.trackerService.MarkSent(c.UserContext(), orderID); err != nil {
		if !errors.Is(err, service.ErrAlreadyInProgress) {
			return h.errorStatus(c, err)
		}
	}

	return h.respondWithProgress(c, orderID)
}

// respondWithProgress returns the current progress view after a mutation.
func (h *TrackerHandler) respondWithProgress(c *fiber.Ctx, orderID int) error {
	view, err := h.trackerService.Progress(orderID)
	if err != nil {
		return h.errorStatus(c, err)
	}
	return c.JSON(view)
}

// errorStatus maps service errors to HTTP responses.
func (h *TrackerHandler) errorStatus(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrOrderNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, orderdomain.ErrInvalidTransition),
		errors.Is(err, service.ErrOrderNotInWarehouse):
		status = fiber.StatusConflict
	case errors.Is(err, ports.ErrUnauthorized),
		errors.Is(err, httpclient.ErrAuthMissing):
		status = fiber.StatusUnauthorized
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: err.Error(),
		RayID:   c.Locals("requestid").(string),
	})
}
