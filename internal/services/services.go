package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"
	"gorm.io/gorm"

	apperrors "kanban-board.com/kanban-board/internal/errors"
	model "kanban-board.com/kanban-board/internal/models"
	"kanban-board.com/kanban-board/internal/ordering"
	repository "kanban-board.com/kanban-board/internal/repositories"
)

// Identity is the authenticated caller. Every service call that touches a
// board takes one explicitly.
type Identity struct {
	UserID   uint
	Username string
}

// ownedBoard loads a board and checks that caller owns it.
func ownedBoard(ctx context.Context, boards *repository.BoardRepository, caller Identity, boardID uint) (*model.Board, error) {
	board, err := boards.FindByID(ctx, boardID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrBoardNotFound, "find board %d", boardID)
	}
	if board.UserID != caller.UserID {
		return nil, apperrors.ErrForbidden
	}
	return board, nil
}

// ownedColumn loads a column and checks that caller owns its board.
func ownedColumn(
	ctx context.Context,
	boards *repository.BoardRepository,
	columns *repository.ColumnRepository,
	caller Identity,
	columnID uint,
) (*model.Column, error) {
	column, err := columns.FindByID(ctx, columnID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrColumnNotFound, "find column %d", columnID)
	}
	if _, err := ownedBoard(ctx, boards, caller, column.BoardID); err != nil {
		return nil, err
	}
	return column, nil
}

func notFound(err error, missing *apperrors.Exception, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return missing
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// reorderError maps ordering and persistence failures of a reorder to the
// outcomes callers see.
func reorderError(err error, missingParent, missingChild *apperrors.Exception) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ordering.ErrParentNotFound):
		return missingParent
	case errors.Is(err, ordering.ErrChildNotFound):
		return missingChild
	case errors.Is(err, gorm.ErrDuplicatedKey):
		log.Errorf("reorder broke position uniqueness: %v", err)
		return fmt.Errorf("%w: %w", apperrors.ErrPositionConflict, err)
	}
	if _, ok := apperrors.AsException(err); ok {
		return err
	}
	log.Errorf("reorder failed: %v", err)
	return err
}

// reorderTx runs fn in one transaction. A commit that fails after fn
// succeeded is reported as a StageError at StageCommitted.
func reorderTx(ctx context.Context, db *gorm.DB, op string, fn func(tx *gorm.DB) error) error {
	applied := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil && applied {
		log.Errorf("reorder commit failed: %v", err)
		return &ordering.StageError{Op: op, Stage: ordering.StageCommitted, Err: err}
	}
	return err
}
