package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/flora/internal/config"
	"github.com/JaimeStill/flora/pkg/openapi"
	"github.com/JaimeStill/flora/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime, cfg *config.Config) error {
	groups := []routes.Group{
		domain.Identifications.Handler(runtime.MaxUploadSize).Routes(),
	}

	routes.Register(mux, groups...)

	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	spec.AddServer(cfg.API.BasePath)
	routes.Describe(spec, groups...)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}
