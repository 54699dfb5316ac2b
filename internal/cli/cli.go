package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerdeck/internal/config"
	"github.com/matzehuels/layerdeck/pkg/buildinfo"
	"github.com/matzehuels/layerdeck/pkg/cache"
	lderrors "github.com/matzehuels/layerdeck/pkg/errors"
	"github.com/matzehuels/layerdeck/pkg/layers"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "layerdeck"

// Log levels exported for use in main.go.
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
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "layerdeck",
		Short:        "Layerdeck toggles renderer visibility in layered actor hierarchies",
		Long:         `Layerdeck decorates the rows of a scene hierarchy with next, show and hide controls, and flips the enabled flag of the renderers underneath. Use it from the terminal panel, over HTTP, or one toggle at a time from scripts.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/layerdeck/config.toml)")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.toggleCommand())
	root.AddCommand(c.composeCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies its log level. Flags are
// applied afterwards by the caller, so they win.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			c.Logger.Debug("no config path", "err", err)
			return nil
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return lderrors.Wrap(lderrors.ErrCodeInvalidConfig, err, "log.level")
	}
	c.SetLogLevel(level)
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Scene Helpers
// =============================================================================

// loadScene reads a scene file in the format implied by its extension.
func loadScene(path string) (*scene.Scene, error) {
	return scene.ReadFile(path)
}

// resolveNode finds the first node whose names match a slash-separated path
// and reports where the search stopped when nothing matches.
func resolveNode(s *scene.Scene, path string) (*scene.Node, error) {
	n, err := s.Find(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return n, nil
}

// countManaged returns the number of nodes that belong to a layered actor.
func countManaged(s *scene.Scene) int {
	ctrl := layers.New(s)
	n := 0
	s.Walk(func(node *scene.Node, _ int) bool {
		if ctrl.Managed(node.ID) {
			n++
		}
		return true
	})
	return n
}

// outputPath returns out, or the input path when out is empty.
func outputPath(in, out string) string {
	if out == "" {
		return in
	}
	return out
}

// =============================================================================
// Cache
// =============================================================================

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/layerdeck/).
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
