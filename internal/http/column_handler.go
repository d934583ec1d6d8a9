package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "kanban-board.com/kanban-board/internal/data_models"
)

func (h *Handler) CreateColumn(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	boardID, err := pathID(c, "bid")
	if err != nil {
		return err
	}

	var req dto.CreateColumnRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	column, err := h.columnService.CreateColumn(c.Request().Context(), identity, boardID, req.Title)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, column)
}

func (h *Handler) ListColumns(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	boardID, err := pathID(c, "bid")
	if err != nil {
		return err
	}

	columns, err := h.columnService.ListColumns(c.Request().Context(), identity, boardID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, columns)
}

func (h *Handler) MoveColumn(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	boardID, err := pathID(c, "bid")
	if err != nil {
		return err
	}
	columnID, err := pathID(c, "cid")
	if err != nil {
		return err
	}

	var req dto.MoveColumnRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	column, err := h.columnService.MoveColumn(c.Request().Context(), identity, boardID, columnID, *req.NewPosition)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, column)
}

func (h *Handler) DeleteColumn(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	boardID, err := pathID(c, "bid")
	if err != nil {
		return err
	}
	columnID, err := pathID(c, "cid")
	if err != nil {
		return err
	}

	if err := h.columnService.DeleteColumn(c.Request().Context(), identity, boardID, columnID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
