package errors

import "net/http"

var ErrUnauthorized = &Exception{
	Message:    "authentication required",
	StatusCode: http.StatusUnauthorized,
}

var ErrTokenExpired = &Exception{
	Message:    "token is expired",
	StatusCode: http.StatusUnauthorized,
}

var ErrTokenRevoked = &Exception{
	Message:    "token has been revoked",
	StatusCode: http.StatusUnauthorized,
}

var ErrInvalidCredentials = &Exception{
	Message:    "invalid username or password",
	StatusCode: http.StatusUnauthorized,
}

var ErrForbidden = &Exception{
	Message:    "access denied: you do not own this board",
	StatusCode: http.StatusForbidden,
}
