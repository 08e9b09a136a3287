// Package cli implements the wafconan command-line interface.
//
// The commands cover both halves of the tool: generating the waf artifact
// from a resolved graph, and using that artifact afterwards (inspecting
// bundles, printing or activating environment profiles, running waf with the
// build environment active).
//
// # Commands
//
//   - generate: project a graph file into conan_waf_config.py
//   - load: show use names or the merged bundle of a use list
//   - env: print the composed environment of a slot as shell code
//   - run: run a command with a slot activated
//   - waf: run waf with auto-activation around configure and build
//   - graph: draw the graph as DOT, SVG or PNG
//   - cache: manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wafconan/pkg/buildinfo"
	"github.com/matzehuels/wafconan/pkg/cache"
	"github.com/matzehuels/wafconan/pkg/pipeline"
)

const appName = "wafconan"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
}

// New creates a CLI whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "wafconan feeds a resolved Conan graph into waf builds",
		Long: `wafconan projects a package manager's resolved dependency graph into a waf
ConfigSet (one use-name bundle per dependency) and activates the graph's
build and run environments around waf's configure and build phases.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./wafconan.toml, then user config dir)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.envCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.wafCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner from the cache configuration.
func (c *CLI) newRunner(ctx context.Context, noCache bool) *pipeline.Runner {
	logger := loggerFromContext(ctx)
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	}
	r := pipeline.NewRunner(c.newCache(ctx, noCache), keyer, logger)
	r.TTL = c.Config.Cache.TTL.Duration
	return r
}

// newCache picks the backend: none, Redis when a URL is configured, else the
// local file cache. Backend failures fall back to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	logger := loggerFromContext(ctx)
	cfg := c.Config.Cache
	if noCache || cfg.Disabled {
		return cache.NewNullCache()
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err == nil {
			return rc
		}
		logger.Warn("redis cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the configured cache directory or the XDG default
// (~/.cache/wafconan/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the user config directory (~/.config/wafconan/).
func configDir() (string, error) {
	if cfgHome := os.Getenv("XDG_CONFIG_HOME"); cfgHome != "" {
		return filepath.Join(cfgHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
