package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flash-sale-tickets/internal/model"
)

// TicketOperations groups the ticket service methods the handler calls.
// The concrete implementation is service.TicketService.
type TicketOperations interface {
	ListAll(ctx context.Context) ([]model.Ticket, error)
	ListAvailable(ctx context.Context) ([]model.Ticket, error)
	AvailableCount(ctx context.Context) (int64, error)
}

// TicketHandler exposes read-only ticket listing and status endpoints.
type TicketHandler struct {
	svc TicketOperations
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(svc TicketOperations) *TicketHandler {
	if svc == nil {
		panic("nil service passed to NewTicketHandler")
	}
	return &TicketHandler{svc: svc}
}

// ListAll handles GET /v1/tickets.
func (h *TicketHandler) ListAll(c echo.Context) error {
	items, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListAvailable handles GET /v1/tickets/available.  The listing comes
// from the durable store, not the fast counter, so it reflects committed
// state.
func (h *TicketHandler) ListAvailable(c echo.Context) error {
	items, err := h.svc.ListAvailable(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Status handles GET /v1/tickets/status.  It reports the fast counter's
// view of remaining stock and a sold-out flag.
func (h *TicketHandler) Status(c echo.Context) error {
	n, err := h.svc.AvailableCount(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read stock"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available_tickets": n,
		"sold_out":          n == 0,
	})
}
