package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hieplq/barber-queue/internal/model"
	"github.com/hieplq/barber-queue/internal/repository"
	"github.com/hieplq/barber-queue/internal/ticketing"
)

type fakeTicketService struct {
	createFunc    func(ctx context.Context, ownerID *uint64, serviceIDs []uint64) (*model.Ticket, error)
	setStatusFunc func(ctx context.Context, ticketID, newStatus string, barberID *uint64) (*model.Ticket, error)
	snapshotFunc  func(ctx context.Context) (*ticketing.QueueSnapshot, error)
	viewFunc      func(ctx context.Context, number int) (*ticketing.TicketView, error)
	estimateFunc  func(ctx context.Context) (int, bool, error)
}

func (f *fakeTicketService) Create(ctx context.Context, ownerID *uint64, serviceIDs []uint64) (*model.Ticket, error) {
	return f.createFunc(ctx, ownerID, serviceIDs)
}

func (f *fakeTicketService) SetStatus(ctx context.Context, ticketID, newStatus string, barberID *uint64) (*model.Ticket, error) {
	return f.setStatusFunc(ctx, ticketID, newStatus, barberID)
}

func (f *fakeTicketService) Snapshot(ctx context.Context) (*ticketing.QueueSnapshot, error) {
	return f.snapshotFunc(ctx)
}

func (f *fakeTicketService) View(ctx context.Context, number int) (*ticketing.TicketView, error) {
	return f.viewFunc(ctx, number)
}

func (f *fakeTicketService) GeneralEstimate(ctx context.Context) (int, bool, error) {
	return f.estimateFunc(ctx)
}

func TestCreateTicketErrorCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"shop closed", repository.ErrShopClosed, http.StatusConflict, "SHOP_CLOSED"},
		{"no services", repository.ErrNoServices, http.StatusBadRequest, "NO_SERVICES_SELECTED"},
		{"capacity", repository.ErrCapacityExceeded, http.StatusConflict, "CAPACITY_EXCEEDED"},
		{"contention", repository.ErrConflict, http.StatusServiceUnavailable, "SYSTEM_BUSY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewTicketHandler(&fakeTicketService{
				createFunc: func(context.Context, *uint64, []uint64) (*model.Ticket, error) {
					return nil, tc.err
				},
			})
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(`{"service_ids":[1]}`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			require.NoError(t, h.CreateTicket(e.NewContext(req, rec)))
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantCode)
		})
	}
}

func TestCreateTicketPassesOwnerFromClaims(t *testing.T) {
	var gotOwner *uint64
	h := NewTicketHandler(&fakeTicketService{
		createFunc: func(_ context.Context, ownerID *uint64, _ []uint64) (*model.Ticket, error) {
			gotOwner = ownerID
			return &model.Ticket{ID: "t1", TicketNumber: 7, Status: model.StatusWaiting}, nil
		},
	})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(`{"service_ids":[1,2]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(42)) // what the JWT middleware stores

	require.NoError(t, h.CreateTicket(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, gotOwner)
	assert.Equal(t, uint64(42), *gotOwner)
}

func TestCreateTicketGuestHasNoOwner(t *testing.T) {
	var gotOwner *uint64
	ownerSeen := false
	h := NewTicketHandler(&fakeTicketService{
		createFunc: func(_ context.Context, ownerID *uint64, _ []uint64) (*model.Ticket, error) {
			gotOwner = ownerID
			ownerSeen = true
			return &model.Ticket{ID: "t1", TicketNumber: 1, Status: model.StatusWaiting}, nil
		},
	})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(`{"service_ids":[1]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.CreateTicket(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, ownerSeen)
	assert.Nil(t, gotOwner)
}

func TestGetTicketValidatesNumber(t *testing.T) {
	h := NewTicketHandler(&fakeTicketService{
		viewFunc: func(context.Context, int) (*ticketing.TicketView, error) {
			t.Fatal("service must not run for invalid numbers")
			return nil, nil
		},
	})
	for _, raw := range []string{"abc", "0", "-3"} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/tickets/:number")
		c.SetParamNames("number")
		c.SetParamValues(raw)
		require.NoError(t, h.GetTicket(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestGetEstimateNoBarbers(t *testing.T) {
	h := NewTicketHandler(&fakeTicketService{
		estimateFunc: func(context.Context) (int, bool, error) { return 0, false, nil },
	})
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/queue/estimate", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetEstimate(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":false`)
	assert.NotContains(t, rec.Body.String(), "estimate_min")
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	h := NewTicketHandler(&fakeTicketService{
		setStatusFunc: func(context.Context, string, string, *uint64) (*model.Ticket, error) {
			return nil, repository.ErrInvalidTransition
		},
	})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"WAITING"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/tickets/:id/status")
	c.SetParamNames("id")
	c.SetParamValues("t1")
	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TRANSITION")
}
