package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"imagify/internal/errors"
	"imagify/internal/gateway"
	"imagify/internal/service"
)

// BillingHandler handles credit purchase endpoints.
type BillingHandler struct {
	billingService service.BillingService
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(billingService service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// CreateOrderRequest represents a purchase initiation request. Pricing fields
// are never accepted from the client; only the plan id matters.
type CreateOrderRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// CreateOrderResponse wraps the gateway order descriptor used by the checkout widget.
type CreateOrderResponse struct {
	Order *gateway.Order `json:"order"`
}

// VerifyRequest represents the three-part checkout confirmation payload.
type VerifyRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// Plans godoc
// @Summary List credit plans
// @Tags billing
// @Produce json
// @Success 200 {array} model.PlanDetails
// @Router /billing/plans [get]
func (h *BillingHandler) Plans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.billingService.Plans())
}

// CreateOrder godoc
// @Summary Initiate a credit purchase
// @Description Creates a pending ledger entry and a gateway order for client-side checkout.
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOrderRequest true "Plan selection"
// @Success 200 {object} CreateOrderResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /billing/orders [post]
func (h *BillingHandler) CreateOrder(c echo.Context) error {
	userID, err := userIDFromToken(c)
	if err != nil {
		return err
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	order, err := h.billingService.InitiatePurchase(c.Request().Context(), userID, req.PlanID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, CreateOrderResponse{Order: order})
}

// Verify godoc
// @Summary Confirm a credit purchase
// @Description Verifies the checkout signature, confirms settlement with the gateway, and grants credits exactly once.
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body VerifyRequest true "Checkout confirmation payload"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /billing/verify [post]
func (h *BillingHandler) Verify(c echo.Context) error {
	if _, err := userIDFromToken(c); err != nil {
		return err
	}

	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	if err := h.billingService.ConfirmPurchase(c.Request().Context(), req.OrderID, req.PaymentID, req.Signature); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "credits added successfully",
	})
}
