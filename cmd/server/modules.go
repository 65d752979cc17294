package main

import (
	"github.com/JaimeStill/bleak/internal/api"
	"github.com/JaimeStill/bleak/internal/config"
	"github.com/JaimeStill/bleak/internal/infrastructure"
	"github.com/JaimeStill/bleak/pkg/middleware"
	"github.com/JaimeStill/bleak/pkg/module"
	"github.com/JaimeStill/bleak/web/scalar"
)

type Modules struct {
	API    *module.Module
	Scalar *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	scalarModule := scalar.NewModule("/scalar", cfg.API.BasePath+"/openapi.json")
	scalarModule.Use(middleware.Logger(infra.Logger))

	return &Modules{
		API:    apiModule,
		Scalar: scalarModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Scalar)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()
	router.HandleHealth(infra.Lifecycle)
	return router
}
