package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	model "kanban-board.com/kanban-board/internal/models"
	"kanban-board.com/kanban-board/internal/ordering"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

// Positions exposes the task order of each column to the ordering engine.
func (r *TaskRepository) Positions() ordering.Siblings {
	return &positionStore{
		db:             r.db,
		newModel:       func() interface{} { return &model.Task{} },
		newParent:      func() interface{} { return &model.Column{} },
		parentKey:      "column_id",
		touchUpdatedAt: true,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListByColumn(ctx context.Context, columnID uint) ([]model.Task, error) {
	tasks := []model.Task{}
	err := r.db.WithContext(ctx).
		Where("column_id = ?", columnID).
		Order("position asc").
		Find(&tasks).Error
	return tasks, err
}

// UpdateDetails writes title and description only; position and column are
// owned by the ordering engine.
func (r *TaskRepository) UpdateDetails(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", task.ID).
		UpdateColumns(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"updated_at":  task.UpdatedAt,
		}).Error
}

func (r *TaskRepository) DeleteByColumn(ctx context.Context, columnID uint) error {
	return r.db.WithContext(ctx).Where("column_id = ?", columnID).Delete(&model.Task{}).Error
}

func (r *TaskRepository) DeleteByBoard(ctx context.Context, boardID uint) error {
	columns := r.db.Model(&model.Column{}).Select("id").Where("board_id = ?", boardID)
	return r.db.WithContext(ctx).Where("column_id IN (?)", columns).Delete(&model.Task{}).Error
}
