package repository

import (
	"context"

	"gorm.io/gorm"

	model "kanban-board.com/kanban-board/internal/models"
	"kanban-board.com/kanban-board/internal/ordering"
)

type ColumnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ColumnRepository) WithTx(tx *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: tx}
}

// Positions exposes the column order of each board to the ordering engine.
func (r *ColumnRepository) Positions() ordering.Siblings {
	return &positionStore{
		db:        r.db,
		newModel:  func() interface{} { return &model.Column{} },
		newParent: func() interface{} { return &model.Board{} },
		parentKey: "board_id",
	}
}

func (r *ColumnRepository) Create(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *ColumnRepository) FindByID(ctx context.Context, id uint) (*model.Column, error) {
	var column model.Column
	err := r.db.WithContext(ctx).First(&column, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &column, nil
}

func (r *ColumnRepository) ListByBoard(ctx context.Context, boardID uint) ([]model.Column, error) {
	columns := []model.Column{}
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("position asc").
		Find(&columns).Error
	return columns, err
}

func (r *ColumnRepository) DeleteByBoard(ctx context.Context, boardID uint) error {
	return r.db.WithContext(ctx).Where("board_id = ?", boardID).Delete(&model.Column{}).Error
}
