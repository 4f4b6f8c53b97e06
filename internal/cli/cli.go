// Package cli implements the depscope command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/buildinfo"
	"github.com/depscope/depscope/pkg/cache"
	"github.com/depscope/depscope/pkg/engine"
	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/resolve"
)

// appName is the application name used for directories and display.
const appName = "depscope"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
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
		Use:          "depscope",
		Short:        "Depscope resolves project dependencies into per-subproject graphs",
		Long:         `Depscope discovers manifests and lockfiles across a repository, groups them into subprojects, and resolves each one into a dependency graph via static lockfile parsing or a remote resolution engine.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newResolver builds the dispatcher from config: an engine client when one
// is configured, backed by the response cache unless disabled.
func (c *CLI) newResolver(cfg Config, noCache bool) (*resolve.Resolver, error) {
	opts := []resolve.Option{resolve.WithLogger(c.Logger)}
	if cfg.EngineURL != "" {
		if err := errors.ValidateURL(cfg.EngineURL); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "engine_url")
		}
		engineOpts := []engine.Option{engine.WithLogger(c.Logger)}
		if cfg.Redis.Addr != "" {
			// Shared backend; scope keys so other tools on the same
			// instance cannot collide.
			engineOpts = append(engineOpts, engine.WithKeyer(cache.NewScopedKeyer(nil, appName+":")))
		}
		if store, err := newCache(cfg, noCache); err == nil {
			engineOpts = append(engineOpts, engine.WithCache(store, cfg.CacheTTL()))
		}
		opts = append(opts, resolve.WithEngine(engine.NewClient(cfg.EngineURL, engineOpts...)))
	}
	return resolve.New(opts...), nil
}

func newCache(cfg Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Redis.Addr != "" {
		return cache.NewRedisCache(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/depscope/).
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
