package api

import (
	"github.com/JaimeStill/bleak/internal/config"
	"github.com/JaimeStill/bleak/internal/infrastructure"
	"github.com/JaimeStill/bleak/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination  pagination.Config
	Workflow    config.WorkflowConfig
	MaxListSize int32
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:   infra.Lifecycle,
			Logger:      infra.Logger.With("module", "api"),
			Database:    infra.Database,
			Storage:     infra.Storage,
			Checkpoints: infra.Checkpoints,
			Model:       infra.Model,
		},
		Pagination:  cfg.API.Pagination,
		Workflow:    cfg.Workflow,
		MaxListSize: cfg.Storage.MaxListSize,
	}
}
