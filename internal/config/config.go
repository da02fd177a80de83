// Package config handles scholarank configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the scholarank configuration, stored in
// ~/.config/scholarank/config.yml.
type Config struct {
	CCFTable string `yaml:"ccf_table,omitempty"` // path to CCF-style rank table CSV
	CASTable string `yaml:"cas_table,omitempty"` // path to CAS-style rank table CSV

	CachePath string `yaml:"cache_path,omitempty"` // venue metadata cache (SQLite)

	HTTPTimeoutSeconds int     `yaml:"http_timeout_seconds,omitempty"`
	RequestsPerSecond  float64 `yaml:"requests_per_second,omitempty"`

	// MinContainment is the minimum rune length of the shorter string
	// in a fuzzy containment match.
	MinContainment int `yaml:"min_containment,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "scholarank"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	DefaultHTTPTimeoutSeconds = 60
	DefaultRequestsPerSecond  = 0.5
	DefaultMinContainment     = 10
)

// Path returns the config file path. Respects XDG_CONFIG_HOME,
// defaults to ~/.config/scholarank/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// DefaultCachePath returns the default venue metadata cache location.
func DefaultCachePath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "venue_cache.db"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, "venue_cache.db")
}

// Load reads the config file, layering environment overrides and
// defaults on top. A missing file is not an error: env and defaults
// still apply.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes the config file, creating the directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// applyEnv overlays SCHOLARANK_* environment variables. A .env file
// in the working directory is honored via godotenv in main.
func (c *Config) applyEnv() {
	if v := os.Getenv("SCHOLARANK_CCF_TABLE"); v != "" {
		c.CCFTable = v
	}
	if v := os.Getenv("SCHOLARANK_CAS_TABLE"); v != "" {
		c.CASTable = v
	}
	if v := os.Getenv("SCHOLARANK_CACHE_PATH"); v != "" {
		c.CachePath = v
	}
	if v := os.Getenv("SCHOLARANK_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HTTPTimeoutSeconds = n
		}
	}
	if v := os.Getenv("SCHOLARANK_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("SCHOLARANK_MIN_CONTAINMENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinContainment = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.CachePath == "" {
		c.CachePath = DefaultCachePath()
	}
	if c.HTTPTimeoutSeconds <= 0 {
		c.HTTPTimeoutSeconds = DefaultHTTPTimeoutSeconds
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.MinContainment <= 0 {
		c.MinContainment = DefaultMinContainment
	}
}
