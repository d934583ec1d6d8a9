package model

import "time"

// Task positions are dense per column: 0..N-1, unique on (column_id, position).
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ColumnID    uint      `gorm:"column:column_id;not null;uniqueIndex:idx_tasks_column_position,priority:1" json:"columnId"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Position    int       `gorm:"not null;uniqueIndex:idx_tasks_column_position,priority:2" json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
