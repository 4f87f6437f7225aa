package jobs

import (
	"fmt"
	"time"

	"github.com/JaimeStill/flora/pkg/envvar"
)

// Supported dispatcher drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config selects and tunes the job dispatcher.
type Config struct {
	Driver    string      `toml:"driver"`
	Workers   int         `toml:"workers"`
	QueueSize int         `toml:"queue_size"`
	Redis     RedisConfig `toml:"redis"`
}

// RedisConfig holds the redis driver connection and queue settings.
type RedisConfig struct {
	URL         string `toml:"url"`
	Queue       string `toml:"queue"`
	ClaimTTL    string `toml:"claim_ttl"`
	PollTimeout string `toml:"poll_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Driver           string
	Workers          string
	QueueSize        string
	RedisURL         string
	RedisQueue       string
	RedisClaimTTL    string
	RedisPollTimeout string
}

// ClaimTTLDuration returns Redis.ClaimTTL as a time.Duration.
func (c *Config) ClaimTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.Redis.ClaimTTL)
	return d
}

// PollTimeoutDuration returns Redis.PollTimeout as a time.Duration.
func (c *Config) PollTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Redis.PollTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.Workers > 0 {
		c.Workers = overlay.Workers
	}
	if overlay.QueueSize > 0 {
		c.QueueSize = overlay.QueueSize
	}
	if overlay.Redis.URL != "" {
		c.Redis.URL = overlay.Redis.URL
	}
	if overlay.Redis.Queue != "" {
		c.Redis.Queue = overlay.Redis.Queue
	}
	if overlay.Redis.ClaimTTL != "" {
		c.Redis.ClaimTTL = overlay.Redis.ClaimTTL
	}
	if overlay.Redis.PollTimeout != "" {
		c.Redis.PollTimeout = overlay.Redis.PollTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.Redis.URL == "" {
		c.Redis.URL = "redis://localhost:6379/0"
	}
	if c.Redis.Queue == "" {
		c.Redis.Queue = "flora:jobs"
	}
	if c.Redis.ClaimTTL == "" {
		c.Redis.ClaimTTL = "24h"
	}
	if c.Redis.PollTimeout == "" {
		c.Redis.PollTimeout = "2s"
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(env.Driver, &c.Driver)
	envvar.Int(env.Workers, &c.Workers)
	envvar.Int(env.QueueSize, &c.QueueSize)
	envvar.String(env.RedisURL, &c.Redis.URL)
	envvar.String(env.RedisQueue, &c.Redis.Queue)
	envvar.String(env.RedisClaimTTL, &c.Redis.ClaimTTL)
	envvar.String(env.RedisPollTimeout, &c.Redis.PollTimeout)
}

func (c *Config) validate() error {
	switch c.Driver {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("unknown driver: %q", c.Driver)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if d, err := time.ParseDuration(c.Redis.ClaimTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid redis.claim_ttl: %q", c.Redis.ClaimTTL)
	}
	if d, err := time.ParseDuration(c.Redis.PollTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid redis.poll_timeout: %q", c.Redis.PollTimeout)
	}
	return nil
}
