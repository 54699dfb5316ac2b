package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := newCache(true)
	if err != nil {
		t.Fatalf("newCache(true): %v", err)
	}
	if _, ok := c.(interface{ Dir() string }); ok {
		t.Error("disabled cache should not be file backed")
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("in.json", ""); got != "in.json" {
		t.Errorf("outputPath without -o = %q", got)
	}
	if got := outputPath("in.json", "out.yaml"); got != "out.yaml" {
		t.Errorf("outputPath with -o = %q", got)
	}
}
