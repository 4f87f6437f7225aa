package storage

import (
	"fmt"
	"time"

	"github.com/JaimeStill/flora/pkg/envvar"
)

// Config holds Azure Blob Storage connection parameters.
// Exactly one of ConnectionString or ServiceURL is required. ConnectionString
// authenticates with the account shared key; ServiceURL authenticates with
// the Azure default credential chain and signs URLs with a user delegation key.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	URLExpiry        string `toml:"url_expiry"`
	UploadExpiry     string `toml:"upload_expiry"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	URLExpiry        string
	UploadExpiry     string
}

// URLExpiryDuration returns URLExpiry as a time.Duration.
func (c *Config) URLExpiryDuration() time.Duration {
	d, _ := time.ParseDuration(c.URLExpiry)
	return d
}

// UploadExpiryDuration returns UploadExpiry as a time.Duration.
func (c *Config) UploadExpiryDuration() time.Duration {
	d, _ := time.ParseDuration(c.UploadExpiry)
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
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
	if overlay.URLExpiry != "" {
		c.URLExpiry = overlay.URLExpiry
	}
	if overlay.UploadExpiry != "" {
		c.UploadExpiry = overlay.UploadExpiry
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "plant-images"
	}
	if c.URLExpiry == "" {
		c.URLExpiry = "1h"
	}
	if c.UploadExpiry == "" {
		c.UploadExpiry = "15m"
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(env.ContainerName, &c.ContainerName)
	envvar.String(env.ConnectionString, &c.ConnectionString)
	envvar.String(env.ServiceURL, &c.ServiceURL)
	envvar.String(env.URLExpiry, &c.URLExpiry)
	envvar.String(env.UploadExpiry, &c.UploadExpiry)
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" && c.ServiceURL == "" {
		return fmt.Errorf("connection_string or service_url required")
	}
	if c.ConnectionString != "" && c.ServiceURL != "" {
		return fmt.Errorf("connection_string and service_url are mutually exclusive")
	}
	if d, err := time.ParseDuration(c.URLExpiry); err != nil || d <= 0 {
		return fmt.Errorf("invalid url_expiry: %q", c.URLExpiry)
	}
	if d, err := time.ParseDuration(c.UploadExpiry); err != nil || d <= 0 {
		return fmt.Errorf("invalid upload_expiry: %q", c.UploadExpiry)
	}
	return nil
}
