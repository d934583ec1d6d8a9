package model

import "time"

// Column positions are dense per board: 0..N-1, unique on (board_id, position).
type Column struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BoardID   uint      `gorm:"column:board_id;not null;uniqueIndex:idx_columns_board_position,priority:1" json:"boardId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Position  int       `gorm:"not null;uniqueIndex:idx_columns_board_position,priority:2" json:"position"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false" json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`

	Tasks []Task `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Column) TableName() string {
	return "columns"
}
