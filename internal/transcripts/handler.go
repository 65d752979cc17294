package transcripts

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/bleak/pkg/handlers"
	"github.com/JaimeStill/bleak/pkg/routes"
	"github.com/JaimeStill/bleak/pkg/storage"
)

// Handler provides HTTP endpoints for transcript archival.
type Handler struct {
	sys         System
	logger      *slog.Logger
	maxListSize int32
}

// NewHandler creates a Handler with the given system, logger and list size default.
func NewHandler(sys System, logger *slog.Logger, maxListSize int32) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "transcripts"),
		maxListSize: maxListSize,
	}
}

// Routes returns the route group definition for transcript endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "",
		Tags:    []string{"Transcripts"},
		Schemas: Schemas(),
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/transcripts", Handler: h.List, OpenAPI: ops.List},
			{Method: "GET", Pattern: "/threads/{id}/transcript", Handler: h.Find, OpenAPI: ops.Find},
			{Method: "POST", Pattern: "/threads/{id}/transcript", Handler: h.Archive, OpenAPI: ops.Archive},
			{Method: "DELETE", Pattern: "/threads/{id}/transcript", Handler: h.Delete, OpenAPI: ops.Delete},
		},
	}
}

// List returns a page of archived transcript blobs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	maxResults, err := storage.ParseMaxResults(r.URL.Query().Get("max_results"), h.maxListSize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.List(r.Context(), r.URL.Query().Get("marker"), maxResults)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns the archived transcript of a thread.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	t, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}

// Archive uploads the current transcript of a thread.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	t, err := h.sys.Archive(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, t)
}

// Delete removes the archived transcript of a thread.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
