package errors

import "net/http"

var ErrTooManyRequests = &Exception{
	Message:    "rate limit exceeded",
	StatusCode: http.StatusTooManyRequests,
}
