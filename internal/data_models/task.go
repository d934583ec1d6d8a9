package dto

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
}

type MoveTaskRequest struct {
	TargetColumnID *uint `json:"targetColumnId" validate:"required"`
	NewPosition    *int  `json:"newPosition" validate:"required"`
}

// UpdateTaskRequest carries only the fields to change; nil leaves a field untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}
