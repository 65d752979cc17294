package transcripts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/bleak/internal/workflow"
	"github.com/JaimeStill/bleak/pkg/storage"
)

var (
	ErrNotFound      = errors.New("transcript not found")
	ErrInvalidThread = errors.New("invalid thread id")
)

// MapHTTPStatus maps transcript, thread and storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, workflow.ErrThreadNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidThread):
		return http.StatusBadRequest
	default:
		return storage.MapHTTPStatus(err)
	}
}
