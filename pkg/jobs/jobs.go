// Package jobs dispatches one-shot background jobs, running each
// identification at most once.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/flora/pkg/lifecycle"
)

// Job asks for one recognition run of an identification.
type Job struct {
	IdentificationID uuid.UUID `json:"identification_id"`
	ImageKey         string    `json:"image_key"`
}

// Handler executes a job. It owns all outcome reporting; the dispatcher
// never retries.
type Handler func(ctx context.Context, job Job)

// System accepts jobs and runs them on background workers.
type System interface {
	// Handle sets the function workers run for each job. It must be called before Start.
	Handle(h Handler)
	// OnDrop sets the function called for a queued job that shutdown
	// prevents from running. The context passed to it is already cancelled.
	OnDrop(h Handler)
	// Submit enqueues job. A second submission for the same identification
	// returns ErrDuplicate.
	Submit(ctx context.Context, job Job) error
	// Start registers the workers with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// New creates the dispatcher selected by cfg.Driver.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "jobs", "driver", cfg.Driver)

	switch cfg.Driver {
	case DriverMemory:
		return newMemory(cfg, logger), nil
	case DriverRedis:
		return newRedis(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown jobs driver: %q", cfg.Driver)
	}
}

func validate(job Job) error {
	if job.IdentificationID == uuid.Nil {
		return ErrInvalidJob
	}
	return nil
}

// execute runs h and contains any panic to the job.
func execute(ctx context.Context, h Handler, job Job, logger *slog.Logger) {
	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			logger.Error("job panicked", "identification_id", job.IdentificationID, "panic", v)
		}
	}()

	h(ctx, job)

	logger.Debug("job finished", "identification_id", job.IdentificationID, "duration", time.Since(start))
}
