package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hieplq/barber-queue/internal/model"
)

// SettingsStore is the settings accessor the admin handler depends on.
type SettingsStore interface {
	Get(ctx context.Context) (*model.ShopSetting, error)
	Update(ctx context.Context, setting *model.ShopSetting) error
}

// BarberDirectory is the roster access the admin handler depends on.
type BarberDirectory interface {
	List(ctx context.Context) ([]*model.Barber, error)
	SetActive(ctx context.Context, id uint64, active bool) error
}

// AdminHandler covers the owner's screens: shop settings and the shift
// roster.
type AdminHandler struct {
	Settings SettingsStore
	Barbers  BarberDirectory
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(settings SettingsStore, barbers BarberDirectory) *AdminHandler {
	if settings == nil || barbers == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Settings: settings, Barbers: barbers}
}

// GetSettings handles GET /v1/admin/settings.
func (h *AdminHandler) GetSettings(c echo.Context) error {
	setting, err := h.Settings.Get(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, setting)
}

// UpdateSettings handles PUT /v1/admin/settings. The whole settings document
// is replaced at once; a ticket created right after this returns sees the new
// values.
func (h *AdminHandler) UpdateSettings(c echo.Context) error {
	var body model.ShopSetting
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.MaxDailyTickets < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_daily_tickets must not be negative"})
	}
	if err := h.Settings.Update(c.Request().Context(), &body); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListBarbers handles GET /v1/admin/barbers: the full roster including
// off-shift staff.
func (h *AdminHandler) ListBarbers(c echo.Context) error {
	barbers, err := h.Barbers.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"barbers": barbers})
}

// SetBarberActive handles PATCH /v1/admin/barbers/:id, putting a barber on
// or off shift.
func (h *AdminHandler) SetBarberActive(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid barber id"})
	}
	var body struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil || body.Active == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Barbers.SetActive(c.Request().Context(), id, *body.Active); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
