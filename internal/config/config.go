// Package config loads the Flora service configuration from TOML files,
// an optional .env file, and FLORA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/flora/pkg/database"
	"github.com/JaimeStill/flora/pkg/envvar"
	"github.com/JaimeStill/flora/pkg/jobs"
	"github.com/JaimeStill/flora/pkg/plantnet"
	"github.com/JaimeStill/flora/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvFloraEnv             = "FLORA_ENV"
	EnvFloraShutdownTimeout = "FLORA_SHUTDOWN_TIMEOUT"
	EnvFloraVersion         = "FLORA_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "FLORA_DB_HOST",
	Port:            "FLORA_DB_PORT",
	Name:            "FLORA_DB_NAME",
	User:            "FLORA_DB_USER",
	Password:        "FLORA_DB_PASSWORD",
	SSLMode:         "FLORA_DB_SSL_MODE",
	MaxOpenConns:    "FLORA_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "FLORA_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "FLORA_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "FLORA_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "FLORA_STORAGE_CONTAINER_NAME",
	ConnectionString: "FLORA_STORAGE_CONNECTION_STRING",
	ServiceURL:       "FLORA_STORAGE_SERVICE_URL",
	URLExpiry:        "FLORA_STORAGE_URL_EXPIRY",
	UploadExpiry:     "FLORA_STORAGE_UPLOAD_EXPIRY",
}

var plantnetEnv = &plantnet.Env{
	BaseURL:  "FLORA_PLANTNET_BASE_URL",
	Project:  "FLORA_PLANTNET_PROJECT",
	APIKey:   "FLORA_PLANTNET_API_KEY",
	Language: "FLORA_PLANTNET_LANGUAGE",
	Results:  "FLORA_PLANTNET_RESULTS",
	Timeout:  "FLORA_PLANTNET_TIMEOUT",
}

var jobsEnv = &jobs.Env{
	Driver:           "FLORA_JOBS_DRIVER",
	Workers:          "FLORA_JOBS_WORKERS",
	QueueSize:        "FLORA_JOBS_QUEUE_SIZE",
	RedisURL:         "FLORA_JOBS_REDIS_URL",
	RedisQueue:       "FLORA_JOBS_REDIS_QUEUE",
	RedisClaimTTL:    "FLORA_JOBS_REDIS_CLAIM_TTL",
	RedisPollTimeout: "FLORA_JOBS_REDIS_POLL_TIMEOUT",
}

// Config is the root configuration for the Flora service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	PlantNet        plantnet.Config `toml:"plantnet"`
	Jobs            jobs.Config     `toml:"jobs"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the FLORA_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvFloraEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads .env (without overriding variables already set), the base
// config (if present), and any FLORA_ENV overlay, then finalizes all values.
// Without a config.toml, defaults and environment variables provide all configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.PlantNet.Merge(&overlay.PlantNet)
	c.Jobs.Merge(&overlay.Jobs)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	envvar.String(EnvFloraShutdownTimeout, &c.ShutdownTimeout)
	envvar.String(EnvFloraVersion, &c.Version)

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.PlantNet.Finalize(plantnetEnv); err != nil {
		return fmt.Errorf("plantnet: %w", err)
	}
	if err := c.Jobs.Finalize(jobsEnv); err != nil {
		return fmt.Errorf("jobs: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvFloraEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
