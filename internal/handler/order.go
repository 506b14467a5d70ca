package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hieplq/barber-queue/internal/model"
	"github.com/hieplq/barber-queue/internal/repository"
)

// OrderHandler covers credit top-up orders. Creating an order only records
// the intent; the money arrives later through the bank webhook, which matches
// on the order code.
type OrderHandler struct {
	Orders *repository.OrderRepo
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders *repository.OrderRepo) *OrderHandler {
	if orders == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders}
}

// newOrderCode derives the reconciliation token the customer types into
// their transfer note. Uppercase hex from a fresh uuid keeps it short enough
// to type and unique enough to never collide in practice.
func newOrderCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "NAP" + strings.ToUpper(raw[:10])
}

// CreateOrder handles POST /v1/orders. Requires an authenticated customer.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID := currentUserID(c)
	if userID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Amount  int64 `json:"amount"`
		Credits int64 `json:"credits"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Amount <= 0 || body.Credits <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount and credits must be positive"})
	}

	order := &model.PaymentOrder{
		ID:      uuid.NewString(),
		Code:    newOrderCode(),
		UserID:  *userID,
		Amount:  body.Amount,
		Credits: body.Credits,
		Status:  model.OrderPending,
	}
	if err := h.Orders.Create(c.Request().Context(), order); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "order": order})
}

// GetOrder handles GET /v1/orders/:code. The client polls this after
// showing the transfer instructions, waiting for the webhook to flip the
// status to PAID.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID := currentUserID(c)
	if userID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	code := strings.ToUpper(c.Param("code"))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order code"})
	}
	order, err := h.Orders.GetByCode(c.Request().Context(), code)
	if err != nil {
		return fail(c, err)
	}
	if order.UserID != *userID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "payment order not found", "code": "ORDER_NOT_FOUND"})
	}
	return c.JSON(http.StatusOK, order)
}
