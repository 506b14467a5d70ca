package handler // declare the package name; contains HTTP handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hieplq/barber-queue/internal/repository"
)

// currentUserID extracts the authenticated user id stored by the JWT
// middleware, or nil for anonymous requests. JWT numeric claims decode as
// float64; string subjects are not used by the auth service so they are
// treated as anonymous.
func currentUserID(c echo.Context) *uint64 {
	v := c.Get("user_id")
	f, ok := v.(float64)
	if !ok || f <= 0 {
		return nil
	}
	id := uint64(f)
	return &id
}

// fail translates an error into the client-facing response. Sentinel errors
// map to short typed codes; anything else is logged with context and
// replaced by a generic SYSTEM_ERROR so database error text never reaches
// the client.
func fail(c echo.Context, err error) error {
	type mapping struct {
		status int
		code   string
		msg    string
	}
	known := []struct {
		err error
		m   mapping
	}{
		{repository.ErrShopClosed, mapping{http.StatusConflict, "SHOP_CLOSED", "the shop is currently closed"}},
		{repository.ErrNoServices, mapping{http.StatusBadRequest, "NO_SERVICES_SELECTED", "select at least one valid service"}},
		{repository.ErrCapacityExceeded, mapping{http.StatusConflict, "CAPACITY_EXCEEDED", "no more tickets available today"}},
		{repository.ErrTicketNotFound, mapping{http.StatusNotFound, "TICKET_NOT_FOUND", "ticket not found"}},
		{repository.ErrBarberNotFound, mapping{http.StatusNotFound, "BARBER_NOT_FOUND", "barber not found"}},
		{repository.ErrBarberBusy, mapping{http.StatusConflict, "BARBER_BUSY", "barber is busy with another ticket"}},
		{repository.ErrUserNotFound, mapping{http.StatusNotFound, "USER_NOT_FOUND", "user not found"}},
		{repository.ErrOrderNotFound, mapping{http.StatusNotFound, "ORDER_NOT_FOUND", "payment order not found"}},
		{repository.ErrSettingNotFound, mapping{http.StatusNotFound, "SETTINGS_NOT_FOUND", "shop settings not found"}},
		{repository.ErrInvalidTransition, mapping{http.StatusConflict, "INVALID_TRANSITION", "status change not allowed"}},
		{repository.ErrAlreadyPaid, mapping{http.StatusConflict, "ALREADY_PAID", "ticket already paid"}},
		{repository.ErrConflict, mapping{http.StatusServiceUnavailable, "SYSTEM_BUSY", "system busy, try again"}},
	}
	for _, k := range known {
		if errors.Is(err, k.err) {
			return c.JSON(k.m.status, echo.Map{"error": k.m.msg, "code": k.m.code})
		}
	}
	log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "code": "SYSTEM_ERROR"})
}
