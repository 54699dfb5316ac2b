package config

import (
	"os"
	"path/filepath"
	"testing"

	lderrors "github.com/matzehuels/layerdeck/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}

	cfg, err = Load("")
	if err != nil || cfg != Default() {
		t.Errorf("Load(\"\") = %+v, %v", cfg, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[panel]
icon_width = 3

[render]
no_cache = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Panel.IconWidth != 3 {
		t.Errorf("Panel.IconWidth = %d, want 3", cfg.Panel.IconWidth)
	}
	if !cfg.Render.NoCache {
		t.Error("Render.NoCache = false, want true")
	}
	if cfg.Serve.Addr != DefaultAddr {
		t.Errorf("Serve.Addr = %q, want default %q", cfg.Serve.Addr, DefaultAddr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[log\nlevel = 1"},
		{"unknown key", "[panel]\nicon_size = 2\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"icon width zero", "[panel]\nicon_width = 0\n"},
		{"icon width huge", "[panel]\nicon_width = 99\n"},
		{"empty addr", "[serve]\naddr = \" \"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !lderrors.Is(err, lderrors.ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want %v", lderrors.GetCode(err), lderrors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "layerdeck", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
