package errors

import "net/http"

var ErrBoardNotFound = &Exception{
	Message:    "board not found",
	StatusCode: http.StatusNotFound,
}

var ErrColumnNotFound = &Exception{
	Message:    "column not found",
	StatusCode: http.StatusNotFound,
}

var ErrTaskNotFound = &Exception{
	Message:    "task not found",
	StatusCode: http.StatusNotFound,
}
