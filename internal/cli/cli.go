// Package cli implements the icemap command-line interface.
//
// This package provides commands for inspecting Iceberg table directories,
// computing diagram layouts, exporting static renders, and serving the
// interactive API. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - inspect: Load a table and print its structure
//   - layout: Build and position the full diagram, written as JSON
//   - render: Export a static SVG of the diagram
//   - serve: Serve the diagram API over HTTP
//   - cache: Manage the local artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/icemap-dev/icemap/pkg/buildinfo"
	"github.com/icemap-dev/icemap/pkg/cache"
	"github.com/icemap-dev/icemap/pkg/pipeline"
	"github.com/icemap-dev/icemap/pkg/sample"
)

// appName is the application name used for directories and display.
const appName = "icemap"

// cacheSchema namespaces every cache key. Bump it when the serialized graph
// format changes so old entries read as misses instead of decode failures.
const cacheSchema = "v1:"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and the user's
// config file applied.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: LoadConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "icemap",
		Short:        "Icemap visualizes Apache Iceberg table internals",
		Long:         `Icemap loads an Iceberg table directory and draws its full structure: metadata versions, snapshots, manifests, data and delete files, and sampled content rows, arranged chronologically.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use. The layout engine is
// left nil so every run configures Graphviz from its own options.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(noCache || c.Config.NoCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cacheSchema)
	return pipeline.NewRunner(store, keyer, nil, c.Logger), nil
}

// newSampler creates the row sampler. A failure to open the embedded
// database degrades to no sampling with a warning, never a hard error.
func (c *CLI) newSampler() sample.Sampler {
	s, err := sample.NewDuckDBSampler()
	if err != nil {
		c.Logger.Warn("row sampling unavailable", "error", err)
		return sample.NullSampler{}
	}
	return s
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/icemap/).
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

// pipelineOptions builds pipeline options seeded from the config file.
func (c *CLI) pipelineOptions(tablePath string) pipeline.Options {
	opts := pipeline.Options{
		TablePath: tablePath,
		MaxFiles:  c.Config.MaxFiles,
		MaxRows:   c.Config.MaxRows,
		RankDir:   c.Config.RankDir,
		Logger:    c.Logger,
	}
	return opts
}
