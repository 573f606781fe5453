// Package cli implements the contriblens command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/pkg/buildinfo"
	"github.com/contriblens/contriblens/pkg/cache"
	"github.com/contriblens/contriblens/pkg/github"
	"github.com/contriblens/contriblens/pkg/observability"
	"github.com/contriblens/contriblens/pkg/session"
)

// appName is the application name used for directories and display.
const appName = "contriblens"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config

	// token set via the global --token flag, highest precedence.
	flagToken string
	noCache   bool
}

// New creates a new CLI instance with a default logger.
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
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Contriblens mines GitHub repositories for contributor data",
		Long: `Contriblens searches GitHub repositories, extracts their full contributor
lists, enriches contributors with public profile data, discovers contact
emails best-effort, and exports the result as CSV.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			cfg, err := LoadConfig(configPath())
			if err != nil {
				return err
			}
			c.Config = cfg
			hooks := debugHooks{logger: c.Logger}
			observability.SetAPIHooks(hooks)
			observability.SetCacheHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.flagToken, "token", "", "GitHub token (overrides env, config, and session)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the response cache")

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.contributorsCommand())
	root.AddCommand(c.emailCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// resolveToken picks the credential in precedence order: --token flag,
// GITHUB_TOKEN, config file, stored session. Empty means unauthenticated.
func (c *CLI) resolveToken(ctx context.Context) string {
	if c.flagToken != "" {
		return c.flagToken
	}
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		return tok
	}
	if c.Config != nil && c.Config.Token != "" {
		return c.Config.Token
	}
	if store, err := session.NewCLIStore(); err == nil {
		if sess, err := store.GetSession(ctx); err == nil && sess != nil {
			return sess.AccessToken
		}
	}
	return ""
}

// newClient builds a GitHub client with the resolved credential and the
// configured cache backend.
func (c *CLI) newClient(ctx context.Context) *github.Client {
	store, err := c.newCache(ctx)
	if err != nil {
		c.Logger.Debug("cache unavailable, continuing without", "err", err)
		store = cache.NewNullCache()
	}
	return github.NewClient(c.resolveToken(ctx), github.WithCache(store))
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, c.Config.Redis.Addr, c.Config.Redis.Password, c.Config.Redis.DB)
	case "none":
		return cache.NewNullCache(), nil
	default:
		return cache.NewFileCache(c.cacheDir())
	}
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/contriblens/) unless configured otherwise.
func (c *CLI) cacheDir() string {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}
