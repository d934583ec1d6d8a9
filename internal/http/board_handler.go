package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "kanban-board.com/kanban-board/internal/data_models"
)

func (h *Handler) CreateBoard(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req dto.CreateBoardRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	board, err := h.boardService.CreateBoard(c.Request().Context(), identity, req.Name, req.Description)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, board)
}

func (h *Handler) ListBoards(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	boards, err := h.boardService.ListBoards(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, boards)
}

func (h *Handler) DeleteBoard(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	boardID, err := pathID(c, "bid")
	if err != nil {
		return err
	}

	if err := h.boardService.DeleteBoard(c.Request().Context(), identity, boardID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
