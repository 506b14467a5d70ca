package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hieplq/barber-queue/internal/model"
	"github.com/hieplq/barber-queue/internal/ticketing"
)

// TicketService is the slice of the ticketing service the HTTP layer needs.
// Declared here so handler tests can substitute a fake.
type TicketService interface {
	Create(ctx context.Context, ownerID *uint64, serviceIDs []uint64) (*model.Ticket, error)
	SetStatus(ctx context.Context, ticketID, newStatus string, barberID *uint64) (*model.Ticket, error)
	Snapshot(ctx context.Context) (*ticketing.QueueSnapshot, error)
	View(ctx context.Context, number int) (*ticketing.TicketView, error)
	GeneralEstimate(ctx context.Context) (int, bool, error)
}

// TicketHandler exposes ticket creation, the polled queue board and staff
// status updates.
type TicketHandler struct {
	Svc TicketService
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(svc TicketService) *TicketHandler {
	if svc == nil {
		panic("nil service passed to NewTicketHandler")
	}
	return &TicketHandler{Svc: svc}
}

// CreateTicket handles POST /v1/tickets. Guests are allowed; when a JWT is
// present the ticket is owned by the authenticated user.
func (h *TicketHandler) CreateTicket(c echo.Context) error {
	var body struct {
		ServiceIDs []uint64 `json:"service_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ticket, err := h.Svc.Create(c.Request().Context(), currentUserID(c), body.ServiceIDs)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "ticket": ticket})
}

// GetQueue handles GET /v1/queue: the day's active tickets with positions
// and the general wait estimate.
func (h *TicketHandler) GetQueue(c echo.Context) error {
	snap, err := h.Svc.Snapshot(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// GetEstimate handles GET /v1/queue/estimate for prospective customers.
// With nobody on shift there is no estimate; the response says so instead of
// inventing a number.
func (h *TicketHandler) GetEstimate(c echo.Context) error {
	min, ok, err := h.Svc.GeneralEstimate(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"available": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"available": true, "estimate_min": min})
}

// GetTicket handles GET /v1/tickets/:number: today's ticket by number with
// the personal estimate and remaining balance.
func (h *TicketHandler) GetTicket(c echo.Context) error {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket number"})
	}
	view, err := h.Svc.View(c.Request().Context(), number)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateStatus handles PATCH /v1/tickets/:id/status from the staff UI.
func (h *TicketHandler) UpdateStatus(c echo.Context) error {
	ticketID := c.Param("id")
	if ticketID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var body struct {
		Status   string  `json:"status"`
		BarberID *uint64 `json:"barber_id"`
	}
	if err := c.Bind(&body); err != nil || body.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ticket, err := h.Svc.SetStatus(c.Request().Context(), ticketID, body.Status, body.BarberID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "ticket": ticket})
}
