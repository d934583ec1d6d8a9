package services

import (
	"context"
	"fmt"

	"github.com/labstack/gommon/log"
	"gorm.io/gorm"

	apperrors "kanban-board.com/kanban-board/internal/errors"
	model "kanban-board.com/kanban-board/internal/models"
	repository "kanban-board.com/kanban-board/internal/repositories"
)

type BoardService struct {
	db      *gorm.DB
	boards  *repository.BoardRepository
	columns *repository.ColumnRepository
	tasks   *repository.TaskRepository
}

func NewBoardService(
	db *gorm.DB,
	boards *repository.BoardRepository,
	columns *repository.ColumnRepository,
	tasks *repository.TaskRepository,
) *BoardService {
	return &BoardService{
		db:      db,
		boards:  boards,
		columns: columns,
		tasks:   tasks,
	}
}

func (s *BoardService) CreateBoard(ctx context.Context, caller Identity, name, description string) (*model.Board, error) {
	board := &model.Board{
		UserID:      caller.UserID,
		Name:        name,
		Description: description,
	}

	if err := s.boards.Create(ctx, board); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	return board, nil
}

func (s *BoardService) ListBoards(ctx context.Context, caller Identity) ([]model.Board, error) {
	boards, err := s.boards.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return boards, nil
}

// DeleteBoard removes the board with its columns and their tasks.
func (s *BoardService) DeleteBoard(ctx context.Context, caller Identity, boardID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		boards := s.boards.WithTx(tx)
		if _, err := ownedBoard(ctx, boards, caller, boardID); err != nil {
			return err
		}

		// lock the board row and its columns before any task row
		if _, err := s.columns.WithTx(tx).Positions().Load(ctx, boardID); err != nil {
			return reorderError(err, apperrors.ErrBoardNotFound, apperrors.ErrColumnNotFound)
		}

		if err := s.tasks.WithTx(tx).DeleteByBoard(ctx, boardID); err != nil {
			return fmt.Errorf("delete tasks of board %d: %w", boardID, err)
		}
		if err := s.columns.WithTx(tx).DeleteByBoard(ctx, boardID); err != nil {
			return fmt.Errorf("delete columns of board %d: %w", boardID, err)
		}
		if err := boards.Delete(ctx, boardID); err != nil {
			return fmt.Errorf("delete board %d: %w", boardID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Infof("board %d deleted by %s", boardID, caller.Username)
	return nil
}
