package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "kanban-board.com/kanban-board/internal/errors"
	"kanban-board.com/kanban-board/internal/services"
)

const identityKey = "identity"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Identity, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's identity on the context.
func Authenticate(authenticator Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c)
			if !ok {
				return apperrors.ErrUnauthorized
			}

			identity, err := authenticator.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

func BearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func IdentityFrom(c echo.Context) (services.Identity, bool) {
	identity, ok := c.Get(identityKey).(services.Identity)
	return identity, ok
}
