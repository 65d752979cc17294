package api

import (
	"net/http"

	"github.com/JaimeStill/bleak/internal/config"
	"github.com/JaimeStill/bleak/pkg/openapi"
	"github.com/JaimeStill/bleak/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	groups := []routes.Group{
		domain.Threads.Handler(cfg.API.MaxBodySizeBytes()).Routes(),
		domain.Transcripts.Handler().Routes(),
	}

	routes.Register(mux, groups...)

	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)
	spec.AddTag("Threads", "Start, resume, retry and inspect prompt refinement threads.")
	spec.AddTag("Transcripts", "Archived transcripts of finished threads.")
	routes.Document(spec, groups...)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return err
	}

	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))
	return nil
}
