package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hieplq/barber-queue/internal/payment"
)

// Reconciler is the slice of the payment reconciler the webhook handler
// needs; declared here so tests can substitute a fake.
type Reconciler interface {
	Process(ctx context.Context, content string, transferAmount int64) (payment.Result, error)
}

// WebhookHandler ingests bank-transfer notifications from the payment
// gateway. The gateway authenticates with a shared-secret bearer header.
type WebhookHandler struct {
	Secret     string
	Reconciler Reconciler
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(secret string, r Reconciler) *WebhookHandler {
	if secret == "" || r == nil {
		panic("invalid arguments passed to NewWebhookHandler")
	}
	return &WebhookHandler{Secret: secret, Reconciler: r}
}

// BankTransfer handles POST /v1/webhooks/bank. Authentication failures get
// 401 and malformed payloads 400, both without touching state. Everything
// the reconciler classifies (settled, partial, unmatched, underpaid top-up,
// unrecognized content) is acknowledged with 200 so the gateway does not
// retry indefinitely for money that simply doesn't map to a known ticket or
// order. Only unexpected internal failures return 500.
func (h *WebhookHandler) BankTransfer(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if !strings.HasPrefix(auth, "Bearer ") ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.Secret)) != 1 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var body struct {
		Content        string `json:"content"`
		TransferAmount int64  `json:"transferAmount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TransferAmount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "transferAmount must be positive"})
	}

	res, err := h.Reconciler.Process(c.Request().Context(), body.Content, body.TransferAmount)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"acknowledged": true, "result": res})
}
