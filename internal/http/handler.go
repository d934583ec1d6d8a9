package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	apperrors "kanban-board.com/kanban-board/internal/errors"
	middleware "kanban-board.com/kanban-board/internal/http/middlewares"
	"kanban-board.com/kanban-board/internal/services"
)

type Handler struct {
	db            *gorm.DB
	authService   *services.AuthService
	boardService  *services.BoardService
	columnService *services.ColumnService
	taskService   *services.TaskService
}

func NewHandler(
	db *gorm.DB,
	authService *services.AuthService,
	boardService *services.BoardService,
	columnService *services.ColumnService,
	taskService *services.TaskService,
) *Handler {
	return &Handler{
		db:            db,
		authService:   authService,
		boardService:  boardService,
		columnService: columnService,
		taskService:   taskService,
	}
}

func (h *Handler) Health(c echo.Context) error {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// bind decodes and validates a request body.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	return c.Validate(req)
}

func caller(c echo.Context) (services.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return services.Identity{}, apperrors.ErrUnauthorized
	}
	return identity, nil
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidID
	}
	return uint(id), nil
}
