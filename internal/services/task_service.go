package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "kanban-board.com/kanban-board/internal/errors"
	"kanban-board.com/kanban-board/internal/metrics"
	model "kanban-board.com/kanban-board/internal/models"
	"kanban-board.com/kanban-board/internal/ordering"
	repository "kanban-board.com/kanban-board/internal/repositories"
)

type TaskService struct {
	db      *gorm.DB
	boards  *repository.BoardRepository
	columns *repository.ColumnRepository
	tasks   *repository.TaskRepository
}

func NewTaskService(
	db *gorm.DB,
	boards *repository.BoardRepository,
	columns *repository.ColumnRepository,
	tasks *repository.TaskRepository,
) *TaskService {
	return &TaskService{
		db:      db,
		boards:  boards,
		columns: columns,
		tasks:   tasks,
	}
}

// TaskDetails is a partial update; nil fields are left unchanged.
type TaskDetails struct {
	Title       *string
	Description *string
}

// CreateTask appends a task at the end of the column.
func (s *TaskService) CreateTask(ctx context.Context, caller Identity, columnID uint, title string, description *string) (*model.Task, error) {
	var task *model.Task
	started := time.Now()

	err := reorderTx(ctx, s.db, "create task", func(tx *gorm.DB) error {
		if _, err := ownedColumn(ctx, s.boards.WithTx(tx), s.columns.WithTx(tx), caller, columnID); err != nil {
			return err
		}

		tasks := s.tasks.WithTx(tx)
		position, err := ordering.Append(ctx, tasks.Positions(), columnID)
		if err != nil {
			return reorderError(err, apperrors.ErrColumnNotFound, apperrors.ErrTaskNotFound)
		}

		task = &model.Task{ColumnID: columnID, Title: title, Position: position}
		if description != nil {
			task.Description = *description
		}
		if err := tasks.Create(ctx, task); err != nil {
			return reorderError(fmt.Errorf("create task: %w", err), apperrors.ErrColumnNotFound, apperrors.ErrTaskNotFound)
		}
		return nil
	})
	metrics.ObserveReorder("task", "create", started, err)
	if err != nil {
		return nil, err
	}

	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, caller Identity, columnID uint) ([]model.Task, error) {
	if _, err := ownedColumn(ctx, s.boards, s.columns, caller, columnID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByColumn(ctx, columnID)
	if err != nil {
		return nil, fmt.Errorf("list tasks of column %d: %w", columnID, err)
	}
	return tasks, nil
}

// MoveTask moves a task within its column or into another column the caller
// owns. newPosition is clamped to the target column.
func (s *TaskService) MoveTask(ctx context.Context, caller Identity, columnID, taskID, targetColumnID uint, newPosition int) (*model.Task, error) {
	var task *model.Task
	started := time.Now()

	err := reorderTx(ctx, s.db, "move task", func(tx *gorm.DB) error {
		boards, columns, tasks := s.boards.WithTx(tx), s.columns.WithTx(tx), s.tasks.WithTx(tx)

		current, err := s.taskInColumn(ctx, boards, columns, tasks, caller, columnID, taskID)
		if err != nil {
			return err
		}
		if targetColumnID != current.ColumnID {
			if _, err := ownedColumn(ctx, boards, columns, caller, targetColumnID); err != nil {
				return err
			}
		}

		_, err = ordering.MoveAcross(ctx, tasks.Positions(), current.ColumnID, targetColumnID, taskID, newPosition)
		if err != nil {
			return reorderError(err, apperrors.ErrColumnNotFound, apperrors.ErrTaskNotFound)
		}

		task, err = tasks.FindByID(ctx, taskID)
		return err
	})
	metrics.ObserveReorder("task", "move", started, err)
	if err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateTaskDetails changes title and description. Position is untouched.
func (s *TaskService) UpdateTaskDetails(ctx context.Context, caller Identity, taskID uint, details TaskDetails) (*model.Task, error) {
	var task *model.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)

		var err error
		task, err = tasks.FindByID(ctx, taskID)
		if err != nil {
			return notFound(err, apperrors.ErrTaskNotFound, "find task %d", taskID)
		}
		if _, err := ownedColumn(ctx, s.boards.WithTx(tx), s.columns.WithTx(tx), caller, task.ColumnID); err != nil {
			return err
		}

		if details.Title != nil {
			task.Title = *details.Title
		}
		if details.Description != nil {
			task.Description = *details.Description
		}

		if err := tasks.UpdateDetails(ctx, task); err != nil {
			return fmt.Errorf("update task %d: %w", taskID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// DeleteTask removes a task and closes the gap it leaves in its column.
func (s *TaskService) DeleteTask(ctx context.Context, caller Identity, columnID, taskID uint) error {
	started := time.Now()

	err := reorderTx(ctx, s.db, "delete task", func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		if _, err := s.taskInColumn(ctx, s.boards.WithTx(tx), s.columns.WithTx(tx), tasks, caller, columnID, taskID); err != nil {
			return err
		}

		err := ordering.Remove(ctx, tasks.Positions(), columnID, taskID)
		return reorderError(err, apperrors.ErrColumnNotFound, apperrors.ErrTaskNotFound)
	})
	metrics.ObserveReorder("task", "delete", started, err)

	return err
}

// taskInColumn loads a task addressed through its column and checks that
// caller owns the board both sit on.
func (s *TaskService) taskInColumn(
	ctx context.Context,
	boards *repository.BoardRepository,
	columns *repository.ColumnRepository,
	tasks *repository.TaskRepository,
	caller Identity,
	columnID, taskID uint,
) (*model.Task, error) {
	if _, err := ownedColumn(ctx, boards, columns, caller, columnID); err != nil {
		return nil, err
	}

	task, err := tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrTaskNotFound, "find task %d", taskID)
	}
	if task.ColumnID != columnID {
		return nil, apperrors.ErrTaskNotFound
	}
	return task, nil
}
