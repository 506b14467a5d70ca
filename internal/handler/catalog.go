package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hieplq/barber-queue/internal/repository"
)

// CatalogHandler serves the purchasable service list customers pick from
// before taking a ticket.
type CatalogHandler struct {
	Services *repository.ServiceRepo
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(services *repository.ServiceRepo) *CatalogHandler {
	if services == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Services: services}
}

// ListServices handles GET /v1/services.
func (h *CatalogHandler) ListServices(c echo.Context) error {
	services, err := h.Services.ListActive(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"services": services})
}
