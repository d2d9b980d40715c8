// Package cli implements the eleventy command-line interface.
//
// This package provides commands for building a site, inspecting the
// recorded dependency graph, managing caches, serving the output
// directory, and browsing the computed render order. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - build: Run a full or incremental site build
//   - graph: Export the recorded uses graph as DOT or SVG
//   - cache: Manage the persistent cache
//   - serve: Serve the output directory with debug endpoints
//   - explain: Browse the computed render order interactively
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context to allow structured progress
// tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/boycaught/eleventy/pkg/build"
	"github.com/boycaught/eleventy/pkg/buildinfo"
	"github.com/boycaught/eleventy/pkg/cache"
	"github.com/boycaught/eleventy/pkg/config"
	"github.com/boycaught/eleventy/pkg/events"
)

const (
	// appName is the application name used for directories and display.
	appName = "eleventy"

	// defaultConfigFile is the site configuration looked up in the
	// working directory when --config is not given.
	defaultConfigFile = "eleventy.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		ConfigPath: defaultConfigFile,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "eleventy",
		Short:        "Eleventy builds static sites from templates and data",
		Long:         `Eleventy is a static-site generator: it resolves per-document data, orders documents so collection readers render after their contributors, and rebuilds incrementally using a recorded dependency graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", defaultConfigFile, "site configuration file")

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.explainCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the site configuration. A missing file yields the
// defaults, so every command works in a bare directory.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.ConfigPath)
}

// newStore creates the persistent cache backend named by the config.
func (c *CLI) newStore(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
	case config.BackendMongo:
		return cache.NewMongoCache(ctx, cache.MongoConfig{URI: cfg.MongoURI})
	case config.BackendNone:
		return cache.NewNullCache(), nil
	default:
		return cache.NewFileCache(cacheDir(cfg))
	}
}

// newRunner creates a build runner wired to the configured store.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, bus *events.Bus, noCache bool) (*build.Runner, error) {
	store, err := c.newStore(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return build.NewRunner(store, nil, bus, c.Logger), nil
}

// cacheDir returns the persistent cache directory for a site.
func cacheDir(cfg *config.Config) string {
	if cfg != nil && cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName + "-cache"
	}
	return filepath.Join(home, ".cache", appName)
}
