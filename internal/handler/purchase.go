package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flash-sale-tickets/internal/model"
	"github.com/iliyamo/flash-sale-tickets/internal/service"
)

// PurchaseOperations groups the purchase service methods the handler
// calls.  The concrete implementation is service.PurchaseService; tests
// substitute a mock.
type PurchaseOperations interface {
	Purchase(ctx context.Context, userID string, quantity int) (int64, error)
	History(ctx context.Context, userID string) ([]model.Purchase, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// PurchaseHandler exposes the purchase endpoint and the per-buyer
// purchase history endpoints.
type PurchaseHandler struct {
	svc PurchaseOperations
}

// NewPurchaseHandler constructs a PurchaseHandler.
func NewPurchaseHandler(svc PurchaseOperations) *PurchaseHandler {
	if svc == nil {
		panic("nil service passed to NewPurchaseHandler")
	}
	return &PurchaseHandler{svc: svc}
}

// Purchase handles POST /v1/purchases.  The body must contain a buyer
// user_id and a positive quantity.  On success it returns 201 with the
// remaining stock; every failure carries success=false, the remaining
// stock and a reason string so callers can distinguish sold-out from
// contention without parsing status codes.
func (h *PurchaseHandler) Purchase(c echo.Context) error {
	var body struct {
		UserID   string `json:"user_id"`
		Quantity int    `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	if body.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
	}

	ctx := c.Request().Context()
	remaining, err := h.svc.Purchase(ctx, body.UserID, body.Quantity)
	if err != nil {
		status, reason := purchaseFailure(err)
		return c.JSON(status, echo.Map{
			"success":         false,
			"remaining_stock": remaining,
			"reason":          reason,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":            true,
		"user_id":            body.UserID,
		"quantity_purchased": body.Quantity,
		"remaining_stock":    remaining,
	})
}

// purchaseFailure maps a purchase error onto an HTTP status and a stable
// reason string.
func purchaseFailure(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest, "quantity must be at least 1"
	case errors.Is(err, service.ErrBuyerNotFound):
		return http.StatusNotFound, "buyer not found"
	case errors.Is(err, service.ErrLockContention):
		return http.StatusConflict, "another purchase is in progress for this buyer"
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict, "not enough tickets available"
	case errors.Is(err, service.ErrDataInconsistency):
		return http.StatusInternalServerError, "inventory inconsistency detected"
	default:
		return http.StatusInternalServerError, "purchase failed, please try again later"
	}
}

// History handles GET /v1/purchases/user/:id.  It returns every purchase
// made by the buyer, newest first, or 404 when the buyer is unknown.
func (h *PurchaseHandler) History(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	items, err := h.svc.History(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrBuyerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "buyer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load purchases"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Count handles GET /v1/purchases/user/:id/count.
func (h *PurchaseHandler) Count(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	n, err := h.svc.CountByUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrBuyerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "buyer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count purchases"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":        userID,
		"purchase_count": n,
	})
}
