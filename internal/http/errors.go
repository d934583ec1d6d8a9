package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	apperrors "kanban-board.com/kanban-board/internal/errors"
)

// ErrorHandler renders every error as {"message": ...}. Unknown errors are
// logged and reported as a bare 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := http.StatusInternalServerError, "internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		message = fmt.Sprint(httpErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusServiceUnavailable, "request timed out"
	default:
		if ex, ok := apperrors.AsException(err); ok {
			status, message = ex.StatusCode, ex.Message
		}
	}

	if status >= http.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, echo.Map{"message": message})
	}
	if err != nil {
		log.Errorf("write error response: %v", err)
	}
}
