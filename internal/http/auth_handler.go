package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "kanban-board.com/kanban-board/internal/data_models"
	apperrors "kanban-board.com/kanban-board/internal/errors"
	middleware "kanban-board.com/kanban-board/internal/http/middlewares"
)

// Register answers in plain text, as clients of this endpoint expect.
func (h *Handler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	_, err := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if ex, ok := apperrors.AsException(err); ok && ex.StatusCode == http.StatusBadRequest {
			return c.String(http.StatusBadRequest, ex.Message)
		}
		return err
	}

	return c.String(http.StatusOK, "User registered successfully!")
}

func (h *Handler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.LoginResponse{
		Token:    session.Token,
		Type:     "Bearer",
		ID:       session.User.ID,
		Username: session.User.Username,
		Email:    session.User.Email,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return apperrors.ErrUnauthorized
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
