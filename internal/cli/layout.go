package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// layoutCommand creates the layout command for building the positioned diagram.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output   string
		noCache  bool
		refresh  bool
		withRows bool
		maxFiles int
		maxRows  int
		rankDir  string
	)

	cmd := &cobra.Command{
		Use:   "layout [table-dir]",
		Short: "Build and position the full table diagram",
		Long: `Build the table diagram and compute its layout.

The layout command loads the table, derives the node/edge graph, positions
it with Graphviz, reorders siblings chronologically, and links delete rows
to their targets. The output is a JSON file containing the fully positioned
graph, ready for display or for 'render'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], layoutParams{
				output:   output,
				noCache:  noCache,
				refresh:  refresh,
				withRows: withRows,
				maxFiles: maxFiles,
				maxRows:  maxRows,
				rankDir:  rankDir,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <table>.icemap.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and recompute")
	cmd.Flags().BoolVar(&withRows, "rows", false, "sample content rows from data files")
	cmd.Flags().IntVar(&maxFiles, "max-files", 0, "max files shown per manifest (default from config)")
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "max sampled rows per file (default from config)")
	cmd.Flags().StringVar(&rankDir, "rankdir", "", "layout direction: LR (default) or TB")

	return cmd
}

type layoutParams struct {
	output   string
	noCache  bool
	refresh  bool
	withRows bool
	maxFiles int
	maxRows  int
	rankDir  string
}

// runLayout executes the full pipeline and writes the positioned graph.
func (c *CLI) runLayout(ctx context.Context, tableDir string, p layoutParams) error {
	runner, err := c.newRunner(p.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions(tableDir)
	opts.Refresh = p.refresh
	opts.IncludeRows = p.withRows
	if p.maxFiles > 0 {
		opts.MaxFiles = p.maxFiles
	}
	if p.maxRows > 0 {
		opts.MaxRows = p.maxRows
	}
	if p.rankDir != "" {
		opts.RankDir = p.rankDir
	}
	if p.withRows {
		opts.Sampler = c.newSampler()
	}

	spinner := newSpinnerWithContext(ctx, "Building table diagram...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("layout table: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := p.output
	if outputPath == "" {
		outputPath = filepath.Base(filepath.Clean(tableDir)) + ".icemap.json"
	}
	if err := result.Graph.WriteFile(outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", "icemap render "+tableDir)

	return nil
}
