package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_LoginMeLogout(t *testing.T) {
	h := newHarness(t, true)
	h.users.On("Login", mock.Anything, "nurse@example.com", "secret").Return(&entities.Session{
		Token: "opaque-token",
		User:  entities.User{ID: "7", Username: "nurse", Email: "nurse@example.com"},
	}, nil)

	rec := h.do(jsonRequest(http.MethodPost, "/api/auth/login", `{"identifier":"nurse@example.com","password":"secret"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"nurse"`)
	assert.NotContains(t, rec.Body.String(), "opaque-token")

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"7"`)

	rec = h.do(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_LoginRejected(t *testing.T) {
	h := newHarness(t, true)
	h.users.On("Login", mock.Anything, "nurse", "wrong").
		Return(nil, apperrors.NewUnauthorizedError("Invalid identifier or password"))

	rec := h.do(jsonRequest(http.MethodPost, "/api/auth/login", `{"identifier":"nurse","password":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid identifier or password")
}

func TestAuthHandler_BadBody(t *testing.T) {
	h := newHarness(t, true)

	rec := h.do(jsonRequest(http.MethodPost, "/api/auth/login", `{"identifier":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(jsonRequest(http.MethodPost, "/api/auth/register", `{"username":"nurse","unexpected":true}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Register(t *testing.T) {
	h := newHarness(t, true)
	h.users.On("Register", mock.Anything, "nurse", "nurse@example.com", "secret").Return(&entities.Session{
		Token: "opaque-token",
		User:  entities.User{ID: "7", Username: "nurse", Email: "nurse@example.com"},
	}, nil)

	rec := h.do(jsonRequest(http.MethodPost, "/api/auth/register", `{"username":"nurse","email":"nurse@example.com","password":"secret"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAuthHandler_Profile(t *testing.T) {
	h := newHarness(t, true)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	h.signIn(t)
	h.users.On("GetByID", mock.Anything, "7").Return(&entities.User{ID: "7", Username: "nurse", Confirmed: true}, nil)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"confirmed":true`)
}
