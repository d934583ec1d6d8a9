package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kanban-board.com/kanban-board/internal/errors"
	"kanban-board.com/kanban-board/internal/keystore"
	"kanban-board.com/kanban-board/internal/services"
)

type stubAuthenticator struct {
	tokens map[string]services.Identity
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (services.Identity, error) {
	identity, ok := s.tokens[token]
	if !ok {
		return services.Identity{}, apperrors.ErrUnauthorized
	}
	return identity, nil
}

func serve(mw echo.MiddlewareFunc, header string) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	err := mw(func(c echo.Context) error { return nil })(c)
	return c, err
}

func TestAuthenticate(t *testing.T) {
	alice := services.Identity{UserID: 1, Username: "alice"}
	mw := Authenticate(stubAuthenticator{tokens: map[string]services.Identity{"good": alice}})

	c, err := serve(mw, "Bearer good")
	require.NoError(t, err)
	identity, ok := IdentityFrom(c)
	require.True(t, ok)
	assert.Equal(t, alice, identity)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic good", "Bearer bad"} {
		_, err := serve(mw, header)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "header %q", header)
	}
}

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	mw := RateLimiter(keystore.NewMemoryStore(), 2, time.Minute)
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	call := func(ip string) error {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	assert.NoError(t, call("10.0.0.1"))
	assert.NoError(t, call("10.0.0.1"))
	assert.ErrorIs(t, call("10.0.0.1"), apperrors.ErrTooManyRequests)
	assert.NoError(t, call("10.0.0.2"))
}
