package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	apperrors "kanban-board.com/kanban-board/internal/errors"
	"kanban-board.com/kanban-board/internal/keystore"
)

// RateLimiter allows limit requests per client IP in each window. Counter
// failures let the request through.
func RateLimiter(counter keystore.Counter, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Path() + "|" + c.RealIP()

			count, err := counter.Incr(c.Request().Context(), key, window)
			if err != nil {
				log.Warnf("rate limiter unavailable: %v", err)
				return next(c)
			}

			if count > int64(limit) {
				return apperrors.ErrTooManyRequests
			}

			return next(c)
		}
	}
}
