package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "kanban-board.com/kanban-board/internal/data_models"
	"kanban-board.com/kanban-board/internal/services"
)

func (h *Handler) CreateTask(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	columnID, err := pathID(c, "cid")
	if err != nil {
		return err
	}

	var req dto.CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), identity, columnID, req.Title, req.Description)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	columnID, err := pathID(c, "cid")
	if err != nil {
		return err
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), identity, columnID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) MoveTask(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	columnID, err := pathID(c, "cid")
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "tid")
	if err != nil {
		return err
	}

	var req dto.MoveTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.MoveTask(c.Request().Context(), identity, columnID, taskID, *req.TargetColumnID, *req.NewPosition)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	taskID, err := pathID(c, "tid")
	if err != nil {
		return err
	}

	var req dto.UpdateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTaskDetails(c.Request().Context(), identity, taskID, services.TaskDetails{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	columnID, err := pathID(c, "cid")
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "tid")
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), identity, columnID, taskID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
