package threads

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JaimeStill/bleak/internal/workflow"
	"github.com/JaimeStill/bleak/pkg/middleware"
)

const (
	contentTypeSSE    = "text/event-stream"
	contentTypeNDJSON = "application/x-ndjson"
)

// stream writes step updates to the response. Headers are deferred until
// the first update so that precondition failures can still be reported
// with a regular status code.
type stream struct {
	w        http.ResponseWriter
	flusher  http.Flusher
	threadID string
	ndjson   bool
	started  bool
	encoder  *json.Encoder
}

func newStream(w http.ResponseWriter, r *http.Request, threadID string) (*stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamUnsupported
	}

	return &stream{
		w:        w,
		flusher:  flusher,
		threadID: threadID,
		ndjson:   strings.Contains(r.Header.Get("Accept"), contentTypeNDJSON),
		encoder:  json.NewEncoder(w),
	}, nil
}

func (s *stream) start() {
	if s.started {
		return
	}
	s.started = true

	h := s.w.Header()
	if s.ndjson {
		h.Set("Content-Type", contentTypeNDJSON)
	} else {
		h.Set("Content-Type", contentTypeSSE)
	}
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set(middleware.ThreadIDHeader, s.threadID)

	// runs outlive the server write timeout
	http.NewResponseController(s.w).SetWriteDeadline(time.Time{})
	s.w.WriteHeader(http.StatusOK)
}

func (s *stream) send(u workflow.StepUpdate) error {
	s.start()

	if s.ndjson {
		if err := s.encoder.Encode(u); err != nil {
			return err
		}
	} else {
		data, err := json.Marshal(u)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", u.Type, data); err != nil {
			return err
		}
	}

	s.flusher.Flush()
	return nil
}
