package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hieplq/barber-queue/internal/payment"
)

type fakeReconciler struct {
	processFunc func(ctx context.Context, content string, amount int64) (payment.Result, error)
}

func (f *fakeReconciler) Process(ctx context.Context, content string, amount int64) (payment.Result, error) {
	return f.processFunc(ctx, content, amount)
}

func postWebhook(t *testing.T, h *WebhookHandler, auth, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/bank", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h.BankTransfer(e.NewContext(req, rec)))
	return rec
}

func TestBankTransferRejectsBadSecret(t *testing.T) {
	called := false
	h := NewWebhookHandler("topsecret", &fakeReconciler{
		processFunc: func(context.Context, string, int64) (payment.Result, error) {
			called = true
			return payment.Result{}, nil
		},
	})

	cases := []struct {
		name string
		auth string
	}{
		{"missing header", ""},
		{"wrong secret", "Bearer nope"},
		{"no bearer prefix", "topsecret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postWebhook(t, h, tc.auth, `{"content":"BARBER 12","transferAmount":50000}`)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	assert.False(t, called, "reconciler must not run without valid auth")
}

func TestBankTransferAcknowledgesBusinessOutcomes(t *testing.T) {
	// Unmatched, underpaid and unrecognized transfers are all results the
	// gateway should stop retrying, so each one must come back 200.
	results := []payment.Result{
		{Kind: payment.MatchTicket, Matched: true, TicketNumber: 12, Settled: true},
		{Kind: payment.MatchTicket, Matched: true, TicketNumber: 12, AmountPaid: 30000, Remaining: 45000},
		{Kind: payment.MatchTicket, Matched: false, TicketNumber: 99},
		{Kind: payment.MatchTopUp, Matched: true, OrderCode: "NAPABC123", Rejected: true},
		{Kind: payment.MatchUnrecognized},
	}
	for _, res := range results {
		res := res
		h := NewWebhookHandler("topsecret", &fakeReconciler{
			processFunc: func(context.Context, string, int64) (payment.Result, error) {
				return res, nil
			},
		})
		rec := postWebhook(t, h, "Bearer topsecret", `{"content":"whatever","transferAmount":30000}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Acknowledged bool `json:"acknowledged"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Acknowledged)
	}
}

func TestBankTransferRejectsNonPositiveAmount(t *testing.T) {
	h := NewWebhookHandler("topsecret", &fakeReconciler{
		processFunc: func(context.Context, string, int64) (payment.Result, error) {
			t.Fatal("reconciler must not run for invalid payloads")
			return payment.Result{}, nil
		},
	})
	rec := postWebhook(t, h, "Bearer topsecret", `{"content":"BARBER 12","transferAmount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBankTransferInternalError(t *testing.T) {
	h := NewWebhookHandler("topsecret", &fakeReconciler{
		processFunc: func(context.Context, string, int64) (payment.Result, error) {
			return payment.Result{}, errors.New("connection reset")
		},
	})
	rec := postWebhook(t, h, "Bearer topsecret", `{"content":"BARBER 12","transferAmount":30000}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "SYSTEM_ERROR")
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
