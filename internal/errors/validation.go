package errors

import "net/http"

var ErrInvalidJSON = &Exception{
	Message:    "invalid JSON payload",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidID = &Exception{
	Message:    "id must be a positive integer",
	StatusCode: http.StatusBadRequest,
}

var ErrUsernameTaken = &Exception{
	Message:    "Error: Username is already taken!",
	StatusCode: http.StatusBadRequest,
}

var ErrEmailTaken = &Exception{
	Message:    "Error: Email is already in use!",
	StatusCode: http.StatusBadRequest,
}
