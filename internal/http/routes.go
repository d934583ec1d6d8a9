package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	middleware "kanban-board.com/kanban-board/internal/http/middlewares"
	"kanban-board.com/kanban-board/internal/http/validators"
	"kanban-board.com/kanban-board/internal/keystore"
	"kanban-board.com/kanban-board/internal/metrics"
)

type Options struct {
	AllowedOrigin      string
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	Counter            keystore.Counter
}

// NewEcho builds the server with the middleware every route shares.
func NewEcho(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.New()
	e.HTTPErrorHandler = ErrorHandler

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Infof("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{opts.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))
	if opts.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{
			Timeout: opts.RequestTimeout,
		}))
	}

	return e
}

func Register(e *echo.Echo, h *Handler, opts Options) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	authn := middleware.Authenticate(h.authService)

	authGroup := e.Group("/api/auth", middleware.RateLimiter(opts.Counter, opts.RateLimitPerMinute, time.Minute))
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", h.Logout, authn)

	api := e.Group("/api", authn)

	api.POST("/boards", h.CreateBoard)
	api.GET("/boards", h.ListBoards)
	api.DELETE("/boards/:bid", h.DeleteBoard)

	api.POST("/boards/:bid/columns", h.CreateColumn)
	api.GET("/boards/:bid/columns", h.ListColumns)
	api.PUT("/boards/:bid/columns/:cid/move", h.MoveColumn)
	api.DELETE("/boards/:bid/columns/:cid", h.DeleteColumn)

	api.POST("/columns/:cid/tasks", h.CreateTask)
	api.GET("/columns/:cid/tasks", h.ListTasks)
	api.PUT("/columns/:cid/tasks/:tid/move", h.MoveTask)
	api.DELETE("/columns/:cid/tasks/:tid", h.DeleteTask)

	api.PUT("/tasks/:tid", h.UpdateTask)
}
