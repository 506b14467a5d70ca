package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hieplq/barber-queue/internal/model"
)

// UserDirectory is the user access the profile handler depends on.
type UserDirectory interface {
	Get(ctx context.Context, id uint64) (*model.User, error)
}

// ProfileHandler serves the authenticated user's own account view.
type ProfileHandler struct {
	Users UserDirectory
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(users UserDirectory) *ProfileHandler {
	if users == nil {
		panic("nil dependency passed to NewProfileHandler")
	}
	return &ProfileHandler{Users: users}
}

// Me handles GET /v1/me: identity, role and the credit balance the customer
// spends on visits and tops up through payment orders.
func (h *ProfileHandler) Me(c echo.Context) error {
	userID := currentUserID(c)
	if userID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	user, err := h.Users.Get(c.Request().Context(), *userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
