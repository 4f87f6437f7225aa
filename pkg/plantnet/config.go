package plantnet

import (
	"fmt"
	"net/url"
	"time"

	"github.com/JaimeStill/flora/pkg/envvar"
)

// Config holds Pl@ntNet API connection parameters.
// An empty APIKey is valid: the client reports itself unconfigured
// instead of failing at startup.
type Config struct {
	BaseURL  string `toml:"base_url"`
	Project  string `toml:"project"`
	APIKey   string `toml:"api_key"`
	Language string `toml:"language"`
	Results  int    `toml:"results"`
	Timeout  string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL  string
	Project  string
	APIKey   string
	Language string
	Results  string
	Timeout  string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
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
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Project != "" {
		c.Project = overlay.Project
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Language != "" {
		c.Language = overlay.Language
	}
	if overlay.Results > 0 {
		c.Results = overlay.Results
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://my-api.plantnet.org"
	}
	if c.Project == "" {
		c.Project = "all"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Results <= 0 {
		c.Results = MaxResults
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(env.BaseURL, &c.BaseURL)
	envvar.String(env.Project, &c.Project)
	envvar.String(env.APIKey, &c.APIKey)
	envvar.String(env.Language, &c.Language)
	envvar.Int(env.Results, &c.Results)
	envvar.String(env.Timeout, &c.Timeout)
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url: %q", c.BaseURL)
	}
	if c.Results < 1 || c.Results > MaxResults {
		return fmt.Errorf("results must be between 1 and %d", MaxResults)
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}
	return nil
}
