package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/icemap-dev/icemap/pkg/graph"
)

// Config holds user preferences loaded from the config file. Every field
// has a working default; the file is optional.
type Config struct {
	// MaxFiles caps the file fan-out shown per manifest.
	MaxFiles int `toml:"max_files"`
	// MaxRows caps the sampled rows shown per data file.
	MaxRows int `toml:"max_rows"`
	// RankDir is the layout direction, "LR" or "TB".
	RankDir string `toml:"rank_dir"`
	// NoCache disables the artifact cache for all commands.
	NoCache bool `toml:"no_cache"`
	// Addr is the default listen address for the serve command.
	Addr string `toml:"addr"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		MaxFiles: graph.DefaultMaxFilesPerManifest,
		MaxRows:  graph.DefaultMaxRowsPerFile,
		RankDir:  "LR",
		Addr:     "localhost:8372",
	}
}

// LoadConfig reads the user's config file, layering it over the defaults.
// A missing or unreadable file yields the defaults; a malformed file is
// ignored the same way rather than blocking every command.
func LoadConfig() Config {
	cfg := DefaultConfig()

	path, err := configPath()
	if err != nil {
		return cfg
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig()
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = graph.DefaultMaxFilesPerManifest
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = graph.DefaultMaxRowsPerFile
	}
	if cfg.RankDir != "LR" && cfg.RankDir != "TB" {
		cfg.RankDir = "LR"
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}
	return cfg
}

// configPath returns the config file location using XDG conventions
// (~/.config/icemap/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
