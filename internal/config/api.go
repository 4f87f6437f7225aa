package config

import (
	"fmt"

	"github.com/JaimeStill/flora/pkg/envvar"
	"github.com/JaimeStill/flora/pkg/formatting"
	"github.com/JaimeStill/flora/pkg/middleware"
	"github.com/JaimeStill/flora/pkg/openapi"
)

const (
	EnvAPIBasePath      = "FLORA_API_BASE_PATH"
	EnvAPIMaxUploadSize = "FLORA_API_MAX_UPLOAD_SIZE"
	EnvAPIURLWorkers    = "FLORA_API_URL_WORKERS"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "FLORA_CORS_ENABLED",
	Origins:          "FLORA_CORS_ORIGINS",
	AllowedMethods:   "FLORA_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "FLORA_CORS_ALLOWED_HEADERS",
	AllowCredentials: "FLORA_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "FLORA_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "FLORA_OPENAPI_TITLE",
	Description: "FLORA_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, upload limits, CORS, and OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	URLWorkers    int                   `toml:"url_workers"`
	CORS          middleware.CORSConfig `toml:"cors"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and OpenAPI configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.URLWorkers > 0 {
		c.URLWorkers = overlay.URLWorkers
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
	if c.URLWorkers <= 0 {
		c.URLWorkers = 8
	}
}

func (c *APIConfig) loadEnv() {
	envvar.String(EnvAPIBasePath, &c.BasePath)
	envvar.String(EnvAPIMaxUploadSize, &c.MaxUploadSize)
	envvar.Int(EnvAPIURLWorkers, &c.URLWorkers)
}

func (c *APIConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	return nil
}
