// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, storage, job
// dispatch, and the Pl@ntNet client) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/flora/internal/config"
	"github.com/JaimeStill/flora/pkg/database"
	"github.com/JaimeStill/flora/pkg/jobs"
	"github.com/JaimeStill/flora/pkg/lifecycle"
	"github.com/JaimeStill/flora/pkg/plantnet"
	"github.com/JaimeStill/flora/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Jobs      jobs.System
	PlantNet  *plantnet.Client
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// The job dispatcher has no handler until a domain registers one with Jobs.Handle.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	dispatcher, err := jobs.New(&cfg.Jobs, logger)
	if err != nil {
		return nil, fmt.Errorf("jobs init failed: %w", err)
	}

	client := plantnet.New(&cfg.PlantNet)
	if !client.Configured() {
		logger.Warn("pl@ntnet api key not configured; identifications will fail until it is set")
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Jobs:      dispatcher,
		PlantNet:  client,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Jobs.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("jobs start failed: %w", err)
	}
	return nil
}
