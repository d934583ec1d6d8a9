package dto

type CreateBoardRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

type CreateColumnRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type MoveColumnRequest struct {
	NewPosition *int `json:"newPosition" validate:"required"`
}
