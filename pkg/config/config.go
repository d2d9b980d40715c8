// Package config loads and validates site configuration.
//
// Configuration is read from a TOML file (default "eleventy.toml") and
// merged with defaults. Every loaded Config carries a unique instance ID;
// compiled-template cache keys embed it so two configuration instances
// (e.g. isolated plugin setups or a reloaded config) never share a
// compiled function even for identical content.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/boycaught/eleventy/pkg/errors"
)

// Default directory layout, relative to the project root.
const (
	DefaultInputDir    = "content"
	DefaultOutputDir   = "_site"
	DefaultIncludesDir = "_includes"
	DefaultDataDir     = "_data"
	DefaultCacheDir    = ".eleventy-cache"
)

// CacheBackend selects where persistent caches and the uses-graph
// snapshot are stored.
type CacheBackend string

// Supported cache backends.
const (
	BackendFile  CacheBackend = "file"
	BackendRedis CacheBackend = "redis"
	BackendMongo CacheBackend = "mongo"
	BackendNone  CacheBackend = "none"
)

// Config holds site-wide build configuration.
type Config struct {
	// Title is the site title exposed to document data.
	Title string `toml:"title"`

	// BaseURL is the canonical base URL for the generated site.
	BaseURL string `toml:"base_url"`

	// InputDir is the directory scanned for source documents.
	InputDir string `toml:"input_dir"`

	// OutputDir receives rendered output.
	OutputDir string `toml:"output_dir"`

	// IncludesDir holds layouts and partials.
	IncludesDir string `toml:"includes_dir"`

	// DataDir holds global data files merged into every document.
	DataDir string `toml:"data_dir"`

	// CacheDir is the location of the file cache backend.
	CacheDir string `toml:"cache_dir"`

	// Backend selects the persistent cache backend.
	Backend CacheBackend `toml:"cache_backend"`

	// RedisAddr is the redis address for the redis backend.
	RedisAddr string `toml:"redis_addr"`

	// MongoURI is the connection string for the mongo backend.
	MongoURI string `toml:"mongo_uri"`

	// IgnoreInitialBuild forces every document to skip during the first
	// pass, populating caches without producing output.
	IgnoreInitialBuild bool `toml:"ignore_initial_build"`

	// id uniquely identifies this configuration instance.
	id string
}

// Load reads a TOML config file, applies defaults, and assigns a fresh
// instance ID. A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load config %s", path)
			}
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.id = uuid.NewString()
	return cfg, nil
}

// New returns a Config with defaults and a fresh instance ID.
// Tests use this instead of Load to avoid filesystem access.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.id = uuid.NewString()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.InputDir == "" {
		c.InputDir = DefaultInputDir
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.IncludesDir == "" {
		c.IncludesDir = DefaultIncludesDir
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.Backend == "" {
		c.Backend = BackendFile
	}
}

// Validate checks backend-specific requirements.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache_backend %q requires redis_addr", c.Backend)
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache_backend %q requires mongo_uri", c.Backend)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid cache_backend: %q (must be one of: file, redis, mongo, none)", c.Backend)
	}
	return nil
}

// ID returns the unique identifier of this configuration instance.
func (c *Config) ID() string { return c.id }

// ResetID assigns a fresh instance ID. Called on config-reset events so
// compiled functions keyed to the previous instance are never reused.
func (c *Config) ResetID() { c.id = uuid.NewString() }

// String returns a short human-readable summary.
func (c *Config) String() string {
	return fmt.Sprintf("config(%s: %s -> %s, backend=%s)", c.id[:8], c.InputDir, c.OutputDir, c.Backend)
}
