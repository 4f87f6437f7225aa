// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/flora/internal/config"
	"github.com/JaimeStill/flora/internal/infrastructure"
	"github.com/JaimeStill/flora/pkg/middleware"
	"github.com/JaimeStill/flora/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// It registers the recognition job handler on the infrastructure dispatcher,
// so it must run before the infrastructure is started.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, runtime, cfg); err != nil {
		return nil, nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Recover(runtime.Logger))

	return m, domain, nil
}
