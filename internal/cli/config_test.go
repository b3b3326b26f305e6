package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/icemap-dev/icemap/pkg/graph"
)

// withConfigFile points XDG_CONFIG_HOME at a temp dir containing the given
// config file content.
func withConfigFile(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	appDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_CONFIG_HOME", dir)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir()) // no config file

	cfg := LoadConfig()
	if cfg.MaxFiles != graph.DefaultMaxFilesPerManifest {
		t.Errorf("MaxFiles = %d, want %d", cfg.MaxFiles, graph.DefaultMaxFilesPerManifest)
	}
	if cfg.RankDir != "LR" {
		t.Errorf("RankDir = %q, want LR", cfg.RankDir)
	}
	if cfg.Addr == "" {
		t.Error("Addr empty")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	withConfigFile(t, `
max_files = 25
max_rows = 3
rank_dir = "TB"
no_cache = true
addr = "0.0.0.0:9000"
`)

	cfg := LoadConfig()
	if cfg.MaxFiles != 25 {
		t.Errorf("MaxFiles = %d, want 25", cfg.MaxFiles)
	}
	if cfg.MaxRows != 3 {
		t.Errorf("MaxRows = %d, want 3", cfg.MaxRows)
	}
	if cfg.RankDir != "TB" {
		t.Errorf("RankDir = %q, want TB", cfg.RankDir)
	}
	if !cfg.NoCache {
		t.Error("NoCache = false, want true")
	}
	if cfg.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	withConfigFile(t, `
max_files = -5
rank_dir = "diagonal"
`)

	cfg := LoadConfig()
	if cfg.MaxFiles != graph.DefaultMaxFilesPerManifest {
		t.Errorf("MaxFiles = %d, want default", cfg.MaxFiles)
	}
	if cfg.RankDir != "LR" {
		t.Errorf("RankDir = %q, want LR", cfg.RankDir)
	}
}

func TestLoadConfigMalformedFileIgnored(t *testing.T) {
	withConfigFile(t, `this is not toml = = =`)

	cfg := LoadConfig()
	if cfg.MaxFiles != graph.DefaultMaxFilesPerManifest {
		t.Errorf("malformed config should yield defaults, MaxFiles = %d", cfg.MaxFiles)
	}
}
