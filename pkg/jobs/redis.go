package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/flora/pkg/lifecycle"
)

const claimPrefix = "flora:claim:"

type redisQueue struct {
	client      *redis.Client
	queue       string
	claimTTL    time.Duration
	pollTimeout time.Duration
	workers     int
	handler     Handler
	drop        Handler
	logger      *slog.Logger
}

func newRedis(cfg *Config, logger *slog.Logger) (*redisQueue, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &redisQueue{
		client:      redis.NewClient(opts),
		queue:       cfg.Redis.Queue,
		claimTTL:    cfg.ClaimTTLDuration(),
		pollTimeout: cfg.PollTimeoutDuration(),
		workers:     cfg.Workers,
		logger:      logger,
	}, nil
}

func (r *redisQueue) Handle(h Handler) {
	r.handler = h
}

// OnDrop sets the handler for a job popped as shutdown began. Jobs still
// in the redis list are left for the next worker.
func (r *redisQueue) OnDrop(h Handler) {
	r.drop = h
}

// Submit claims the identification id with SETNX before pushing, so a
// second submission for the same id is rejected across processes.
func (r *redisQueue) Submit(ctx context.Context, job Job) error {
	if err := validate(job); err != nil {
		return err
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	key := claimPrefix + job.IdentificationID.String()

	claimed, err := r.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), r.claimTTL).Result()
	if err != nil {
		return fmt.Errorf("claim job: %w", err)
	}
	if !claimed {
		return ErrDuplicate
	}

	if err := r.client.LPush(ctx, r.queue, payload).Err(); err != nil {
		r.client.Del(context.WithoutCancel(ctx), key)
		return fmt.Errorf("enqueue job: %w", err)
	}

	return nil
}

func (r *redisQueue) Start(lc *lifecycle.Coordinator) error {
	if r.handler == nil {
		return ErrNoHandler
	}

	r.logger.Info("starting job workers", "workers", r.workers, "queue", r.queue)

	lc.OnStartup(func() {
		if err := r.client.Ping(lc.Context()).Err(); err != nil {
			r.logger.Error("redis ping failed", "error", err)
			return
		}
		r.logger.Info("redis connection established")
	})

	for range r.workers {
		lc.Go(r.work)
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-lc.Drained()
		if err := r.client.Close(); err != nil {
			r.logger.Error("redis close failed", "error", err)
			return
		}
		r.logger.Info("redis connection closed")
	})

	return nil
}

// work pops jobs until ctx is cancelled. A popped job is never pushed back.
func (r *redisQueue) work(ctx context.Context) {
	for ctx.Err() == nil {
		res, err := r.client.BRPop(ctx, r.pollTimeout, r.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			r.logger.Error("dequeue job failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			r.logger.Error("decode job failed", "payload", res[1], "error", err)
			continue
		}

		if ctx.Err() != nil {
			r.logger.Warn("job dropped at shutdown", "identification_id", job.IdentificationID)
			if r.drop != nil {
				execute(ctx, r.drop, job, r.logger)
			}
			continue
		}

		execute(ctx, r.handler, job, r.logger)
	}
}
