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

type ColumnService struct {
	db      *gorm.DB
	boards  *repository.BoardRepository
	columns *repository.ColumnRepository
	tasks   *repository.TaskRepository
}

func NewColumnService(
	db *gorm.DB,
	boards *repository.BoardRepository,
	columns *repository.ColumnRepository,
	tasks *repository.TaskRepository,
) *ColumnService {
	return &ColumnService{
		db:      db,
		boards:  boards,
		columns: columns,
		tasks:   tasks,
	}
}

// CreateColumn appends a column at the end of the board.
func (s *ColumnService) CreateColumn(ctx context.Context, caller Identity, boardID uint, title string) (*model.Column, error) {
	var column *model.Column
	started := time.Now()

	err := reorderTx(ctx, s.db, "create column", func(tx *gorm.DB) error {
		if _, err := ownedBoard(ctx, s.boards.WithTx(tx), caller, boardID); err != nil {
			return err
		}

		columns := s.columns.WithTx(tx)
		position, err := ordering.Append(ctx, columns.Positions(), boardID)
		if err != nil {
			return reorderError(err, apperrors.ErrBoardNotFound, apperrors.ErrColumnNotFound)
		}

		column = &model.Column{BoardID: boardID, Title: title, Position: position}
		if err := columns.Create(ctx, column); err != nil {
			return reorderError(fmt.Errorf("create column: %w", err), apperrors.ErrBoardNotFound, apperrors.ErrColumnNotFound)
		}
		return nil
	})
	metrics.ObserveReorder("column", "create", started, err)
	if err != nil {
		return nil, err
	}

	return column, nil
}

func (s *ColumnService) ListColumns(ctx context.Context, caller Identity, boardID uint) ([]model.Column, error) {
	if _, err := ownedBoard(ctx, s.boards, caller, boardID); err != nil {
		return nil, err
	}

	columns, err := s.columns.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list columns of board %d: %w", boardID, err)
	}
	return columns, nil
}

// MoveColumn reorders a column within its board. newPosition is clamped.
func (s *ColumnService) MoveColumn(ctx context.Context, caller Identity, boardID, columnID uint, newPosition int) (*model.Column, error) {
	var column *model.Column
	started := time.Now()

	err := reorderTx(ctx, s.db, "move column", func(tx *gorm.DB) error {
		columns := s.columns.WithTx(tx)
		if err := s.checkColumn(ctx, tx, caller, boardID, columnID); err != nil {
			return err
		}

		if _, err := ordering.MoveWithin(ctx, columns.Positions(), boardID, columnID, newPosition); err != nil {
			return reorderError(err, apperrors.ErrBoardNotFound, apperrors.ErrColumnNotFound)
		}

		var err error
		column, err = columns.FindByID(ctx, columnID)
		return err
	})
	metrics.ObserveReorder("column", "move", started, err)
	if err != nil {
		return nil, err
	}

	return column, nil
}

// DeleteColumn removes a column with its tasks and closes the gap it leaves.
func (s *ColumnService) DeleteColumn(ctx context.Context, caller Identity, boardID, columnID uint) error {
	started := time.Now()

	err := reorderTx(ctx, s.db, "delete column", func(tx *gorm.DB) error {
		if err := s.checkColumn(ctx, tx, caller, boardID, columnID); err != nil {
			return err
		}

		// board, then columns, then tasks: the order every reorder locks in
		columns := s.columns.WithTx(tx).Positions()
		if _, err := columns.Load(ctx, boardID); err != nil {
			return reorderError(err, apperrors.ErrBoardNotFound, apperrors.ErrColumnNotFound)
		}

		if err := s.tasks.WithTx(tx).DeleteByColumn(ctx, columnID); err != nil {
			return fmt.Errorf("delete tasks of column %d: %w", columnID, err)
		}

		err := ordering.Remove(ctx, columns, boardID, columnID)
		return reorderError(err, apperrors.ErrBoardNotFound, apperrors.ErrColumnNotFound)
	})
	metrics.ObserveReorder("column", "delete", started, err)

	return err
}

// checkColumn verifies that caller owns boardID and that columnID is on it.
func (s *ColumnService) checkColumn(ctx context.Context, tx *gorm.DB, caller Identity, boardID, columnID uint) error {
	if _, err := ownedBoard(ctx, s.boards.WithTx(tx), caller, boardID); err != nil {
		return err
	}

	column, err := s.columns.WithTx(tx).FindByID(ctx, columnID)
	if err != nil {
		return notFound(err, apperrors.ErrColumnNotFound, "find column %d", columnID)
	}
	if column.BoardID != boardID {
		return apperrors.ErrColumnNotFound
	}
	return nil
}
