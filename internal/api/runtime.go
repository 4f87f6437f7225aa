package api

import (
	"github.com/JaimeStill/flora/internal/config"
	"github.com/JaimeStill/flora/internal/infrastructure"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	MaxUploadSize int64
	URLWorkers    int
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Jobs:      infra.Jobs,
			PlantNet:  infra.PlantNet,
		},
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
		URLWorkers:    cfg.API.URLWorkers,
	}
}
