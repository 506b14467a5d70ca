package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hieplq/barber-queue/internal/model"
	"github.com/hieplq/barber-queue/internal/repository"
)

type fakeUsers struct {
	getFunc func(ctx context.Context, id uint64) (*model.User, error)
}

func (f *fakeUsers) Get(ctx context.Context, id uint64) (*model.User, error) {
	return f.getFunc(ctx, id)
}

func getMe(t *testing.T, h *ProfileHandler, userID *float64) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", *userID)
	}
	require.NoError(t, h.Me(c))
	return rec
}

func TestMeReturnsOwnAccount(t *testing.T) {
	h := NewProfileHandler(&fakeUsers{
		getFunc: func(_ context.Context, id uint64) (*model.User, error) {
			assert.Equal(t, uint64(42), id)
			return &model.User{ID: id, Name: "Minh", Role: model.RoleCustomer, Credits: 3}, nil
		},
	})
	id := float64(42)
	rec := getMe(t, h, &id)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"credits":3`)
}

func TestMeRequiresAuth(t *testing.T) {
	h := NewProfileHandler(&fakeUsers{
		getFunc: func(context.Context, uint64) (*model.User, error) {
			t.Fatal("lookup must not run without claims")
			return nil, nil
		},
	})
	rec := getMe(t, h, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeUnknownUser(t *testing.T) {
	h := NewProfileHandler(&fakeUsers{
		getFunc: func(context.Context, uint64) (*model.User, error) {
			return nil, repository.ErrUserNotFound
		},
	})
	id := float64(9)
	rec := getMe(t, h, &id)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "USER_NOT_FOUND")
}
