package threads

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/bleak/internal/workflow"
)

var (
	ErrInvalidRequest    = errors.New("invalid request body")
	ErrStreamUnsupported = errors.New("streaming is unsupported by response writer")
)

// MapHTTPStatus maps thread and workflow errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrStreamUnsupported) {
		return http.StatusInternalServerError
	}
	return workflow.MapHTTPStatus(err)
}
