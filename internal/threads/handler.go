package threads

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JaimeStill/bleak/internal/workflow"
	"github.com/JaimeStill/bleak/pkg/handlers"
	"github.com/JaimeStill/bleak/pkg/pagination"
	"github.com/JaimeStill/bleak/pkg/routes"
)

// Handler provides HTTP endpoints for thread operations.
type Handler struct {
	sys         System
	logger      *slog.Logger
	pagination  pagination.Config
	maxBodySize int64
	validate    *validator.Validate
}

// NewHandler creates a Handler with the given system, logger, pagination config and body size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBodySize int64,
) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "threads"),
		pagination:  pagination,
		maxBodySize: maxBodySize,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes returns the route group definition for thread endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/threads",
		Tags:    []string{"Threads"},
		Schemas: Schemas(),
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: ops.List},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: ops.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: ops.Find},
			{Method: "POST", Pattern: "/{id}/stream", Handler: h.Stream, OpenAPI: ops.Stream},
			{Method: "POST", Pattern: "/{id}/resume", Handler: h.Resume, OpenAPI: ops.Resume},
			{Method: "POST", Pattern: "/{id}/retry", Handler: h.Retry, OpenAPI: ops.Retry},
		},
	}
}

// List returns a paginated list of thread summaries.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns the current checkpoint view of a thread.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	v, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

// Create starts a new thread with a generated id and streams the run.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.start(w, r, uuid.NewString())
}

// Stream starts, or restarts, the thread named by the path and streams the run.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	h.start(w, r, r.PathValue("id"))
}

// Resume answers the thread's pending suspension and streams the continued run.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	var req ResumeRequest
	if err := h.decode(w, r, &req); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	threadID := r.PathValue("id")
	h.run(w, r, threadID, func(sink workflow.Sink) error {
		return h.sys.Resume(r.Context(), threadID, req.Resume, sink)
	})
}

// Retry re-executes the thread's last model step and streams the run.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")
	h.run(w, r, threadID, func(sink workflow.Sink) error {
		return h.sys.Retry(r.Context(), threadID, sink)
	})
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request, threadID string) {
	var req StartRequest
	if err := h.decode(w, r, &req); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.run(w, r, threadID, func(sink workflow.Sink) error {
		return h.sys.Start(r.Context(), threadID, req.Input, sink)
	})
}

// run executes fn against a lazily started stream. Errors returned before
// the first update become regular error responses.
func (h *Handler) run(w http.ResponseWriter, r *http.Request, threadID string, fn func(workflow.Sink) error) {
	s, err := newStream(w, r, threadID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := fn(s.send); err != nil {
		if !s.started {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		h.logger.WarnContext(r.Context(), "stream interrupted", "thread_id", threadID, "error", err)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return nil
}
