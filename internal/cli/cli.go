// Package cli implements the boxlayout command-line interface.
//
// Commands load an edit script, replay it through the layout engine and
// then write, render, check or step through the result. The serve command
// keeps engines alive as sessions behind an HTTP API.
//
// # Commands
//
//   - replay: Apply a script and write the snapshot, optionally with per-step actions
//   - render: Produce JSON, DOT or SVG output through the cached pipeline
//   - check: Verify layout invariants, overlaps and crossings
//   - step: Walk through a script interactively
//   - serve: Run the session HTTP API
//   - cache: Manage the render cache
//
// # Configuration
//
// Settings are read from boxlayout.yaml, then BOXLAYOUT_* environment
// variables, then flags. See [Config].
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Verbose runs
// also log engine, pipeline, cache and HTTP events through the hooks in
// package observability.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/buildinfo"
	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/observability"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
	"github.com/matzehuels/boxlayout/pkg/script"
	"github.com/matzehuels/boxlayout/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "boxlayout"

// Log levels for [New].
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfgFile string
	verbose bool
	config  *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "boxlayout keeps layered box diagrams laid out under edits",
		Long:         `boxlayout replays edit scripts through an incremental layered layout engine and renders, checks, steps through or serves the resulting diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				observability.Register(observability.NewLogHooks(c.Logger))
			}
			cfg, err := loadConfig(c.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			c.config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default ./"+configFileName+")")
	root.PersistentFlags().Float64("horizontal-gap", 0, "minimum horizontal gap between boxes")
	root.PersistentFlags().Float64("vertical-gap", 0, "vertical gap between layers")

	root.AddCommand(c.replayCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.stepCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// cfg returns the loaded config, or defaults when no command loaded one.
func (c *CLI) cfg() *Config {
	if c.config == nil {
		cfg, err := loadConfig("", nil)
		if err != nil {
			c.Logger.Warn("config", "err", err)
			cfg = &Config{}
		}
		c.config = cfg
	}
	return c.config
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if prefix := c.cfg().Cache.Prefix; prefix != "" {
		keyer = cache.NewScopedKeyer(nil, prefix)
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	r.TTL = c.cfg().Cache.TTL
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.cfg().Cache
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case cfg.RedisAddr != "":
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
	case cfg.Dir == "":
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(cfg.Dir)
}

func (c *CLI) newStore(ctx context.Context) (session.Store, error) {
	cfg := c.cfg().Store
	if cfg.MongoURI != "" {
		return session.NewMongoStore(ctx, session.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	}
	return session.NewFileStore(cfg.Dir)
}

// loadScript reads a script file and logs its size.
func (c *CLI) loadScript(path string) (script.Script, error) {
	start := time.Now()
	s, err := script.Load(path)
	if err != nil {
		return script.Script{}, err
	}
	c.Logger.Debug("loaded script", "path", path, "edits", len(s.Edits), "duration", time.Since(start))
	return s, nil
}

// pipelineOptions builds runner options from the loaded config.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{Layout: c.cfg().Layout, Logger: c.Logger}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/boxlayout/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// outputBase returns the output path without extension; an empty output
// derives it from the script path.
func outputBase(output, scriptPath string) string {
	if output == "" {
		output = scriptPath
	}
	return strings.TrimSuffix(output, filepath.Ext(output))
}
