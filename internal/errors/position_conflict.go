package errors

import "net/http"

// ErrPositionConflict means a reorder hit the (parent, position) unique index.
// The engine never produces duplicates, so this is reported as a server fault.
var ErrPositionConflict = &Exception{
	Message:    "position conflict while reordering",
	StatusCode: http.StatusInternalServerError,
}
