// Package config loads layerdeck's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/layerdeck/config.toml (falling back to
// ~/.config/layerdeck/config.toml). A missing file is not an error; every
// field has a default, and command-line flags override what the file sets.
//
//	[log]
//	level = "debug"
//
//	[panel]
//	icon_width = 3
//
//	[serve]
//	addr = "127.0.0.1:8080"
//
//	[render]
//	no_cache = false
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	lderrors "github.com/matzehuels/layerdeck/pkg/errors"
)

const appName = "layerdeck"

// Defaults.
const (
	DefaultLogLevel  = "info"
	DefaultIconWidth = 2
	DefaultAddr      = "127.0.0.1:8080"
	maxIconWidth     = 16
)

// Config is the decoded configuration file.
type Config struct {
	Log    Log    `toml:"log"`
	Panel  Panel  `toml:"panel"`
	Serve  Serve  `toml:"serve"`
	Render Render `toml:"render"`
}

// Log configures the logger.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// Panel configures the terminal panel.
type Panel struct {
	// IconWidth is the width of one icon slot in terminal cells.
	IconWidth int `toml:"icon_width"`
}

// Serve configures the HTTP panel.
type Serve struct {
	Addr string `toml:"addr"`
}

// Render configures diagram export.
type Render struct {
	// NoCache disables the rendered SVG cache.
	NoCache bool `toml:"no_cache"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Log:   Log{Level: DefaultLogLevel},
		Panel: Panel{IconWidth: DefaultIconWidth},
		Serve: Serve{Addr: DefaultAddr},
	}
}

// DefaultPath returns the XDG config file location.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the configuration at path. Defaults are applied before
// decoding, so the file only needs the keys it changes. A missing file
// yields [Default].
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, lderrors.Wrap(lderrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, lderrors.New(lderrors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return lderrors.New(lderrors.ErrCodeInvalidConfig, "log.level %q (want debug, info, warn or error)", c.Log.Level)
	}
	if c.Panel.IconWidth < 1 || c.Panel.IconWidth > maxIconWidth {
		return lderrors.New(lderrors.ErrCodeInvalidConfig, "panel.icon_width %d out of range 1..%d", c.Panel.IconWidth, maxIconWidth)
	}
	if strings.TrimSpace(c.Serve.Addr) == "" {
		return lderrors.New(lderrors.ErrCodeInvalidConfig, "serve.addr is empty")
	}
	return nil
}
