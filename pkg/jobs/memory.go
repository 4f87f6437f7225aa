package jobs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/flora/pkg/lifecycle"
)

type memory struct {
	queue   chan Job
	workers int
	handler Handler
	drop    Handler
	logger  *slog.Logger

	mu      sync.Mutex
	claimed map[uuid.UUID]struct{}
	closed  bool
}

func newMemory(cfg *Config, logger *slog.Logger) *memory {
	return &memory{
		queue:   make(chan Job, cfg.QueueSize),
		workers: cfg.Workers,
		logger:  logger,
		claimed: make(map[uuid.UUID]struct{}),
	}
}

func (m *memory) Handle(h Handler) {
	m.handler = h
}

func (m *memory) OnDrop(h Handler) {
	m.drop = h
}

func (m *memory) Submit(ctx context.Context, job Job) error {
	if err := validate(job); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if _, ok := m.claimed[job.IdentificationID]; ok {
		return ErrDuplicate
	}

	select {
	case m.queue <- job:
		m.claimed[job.IdentificationID] = struct{}{}
		return nil
	default:
		return ErrQueueFull
	}
}

func (m *memory) Start(lc *lifecycle.Coordinator) error {
	if m.handler == nil {
		return ErrNoHandler
	}

	m.logger.Info("starting job workers", "workers", m.workers, "queue_size", cap(m.queue))

	for range m.workers {
		lc.Go(m.work)
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		m.mu.Lock()
		m.closed = true
		close(m.queue)
		m.mu.Unlock()

		m.logger.Info("job queue closed")
	})

	return nil
}

// work runs queued jobs until the queue closes. Jobs still queued after
// cancellation go to the drop handler.
func (m *memory) work(ctx context.Context) {
	for job := range m.queue {
		if ctx.Err() != nil {
			m.logger.Warn("job dropped at shutdown", "identification_id", job.IdentificationID)
			if m.drop != nil {
				execute(ctx, m.drop, job, m.logger)
			}
		} else {
			execute(ctx, m.handler, job, m.logger)
		}
		m.release(job)
	}
}

func (m *memory) release(job Job) {
	m.mu.Lock()
	delete(m.claimed, job.IdentificationID)
	m.mu.Unlock()
}
