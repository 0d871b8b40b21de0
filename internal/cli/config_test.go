package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/flowlayout/pkg/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[pipeline]
format = "svg"
view_ttl = "12h"

[pipeline.layout]
horizontal_gap = 100

[cache]
prefix = "flowlayout:test:"

[cache.redis]
addr = "localhost:6379"
db = 2

[server]
addr = ":9090"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Pipeline.Format != "svg" {
		t.Errorf("Format = %q", cfg.Pipeline.Format)
	}
	if cfg.Pipeline.ViewTTL != 12*time.Hour {
		t.Errorf("ViewTTL = %v", cfg.Pipeline.ViewTTL)
	}
	if cfg.Pipeline.Layout.HorizontalGap != 100 {
		t.Errorf("HorizontalGap = %v", cfg.Pipeline.Layout.HorizontalGap)
	}
	if cfg.Cache.Prefix != "flowlayout:test:" || cfg.Cache.Redis.Addr != "localhost:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, "[pipeline]\nfromat = \"svg\"\n")

	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "fromat") {
		t.Errorf("loadConfig() error = %v, want unknown key", err)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// Missing default file is fine.
	cfg, err := loadConfig("")
	if err != nil {
		t.Errorf("missing default config: %v", err)
	}
	if cfg.Pipeline.Layout != layout.DefaultOptions() {
		t.Errorf("Layout = %+v, want defaults", cfg.Pipeline.Layout)
	}

	// Missing explicit file is not.
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestLoadConfigZeroGap(t *testing.T) {
	path := writeConfig(t, "[pipeline.layout]\nvertical_gap = 0\n")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	c := &CLI{config: cfg}
	opts := c.options()
	if opts.Layout.VerticalGap != 0 {
		t.Errorf("VerticalGap = %v, want explicit 0", opts.Layout.VerticalGap)
	}
	if opts.Layout.HorizontalGap != layout.DefaultHorizontalGap {
		t.Errorf("HorizontalGap = %v, want default", opts.Layout.HorizontalGap)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	c := &CLI{}
	c.config.Pipeline.Layout.VerticalGap = 64

	opts := c.options()
	if opts.Layout.VerticalGap != 64 {
		t.Errorf("VerticalGap = %v, want 64", opts.Layout.VerticalGap)
	}
	if opts.Layout.ActivityWidth == 0 || opts.Format == "" {
		t.Error("defaults not applied")
	}
}
