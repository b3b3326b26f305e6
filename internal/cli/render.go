package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/icemap-dev/icemap/pkg/layout"
)

// renderCommand creates the render command for static SVG export.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		noCache  bool
		withRows bool
		rankDir  string
	)

	cmd := &cobra.Command{
		Use:   "render [table-dir]",
		Short: "Export a static SVG of the table diagram",
		Long: `Build the table diagram and export it as a static SVG.

The SVG is rendered directly by Graphviz from the diagram structure; it
shows the same nodes and edges as the interactive view but without
chronological reordering or delete-row linking, which only apply to
positioned graphs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], output, noCache, withRows, rankDir)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <table>.svg)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&withRows, "rows", false, "sample content rows from data files")
	cmd.Flags().StringVar(&rankDir, "rankdir", "", "layout direction: LR (default) or TB")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, tableDir, output string, noCache, withRows bool, rankDir string) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions(tableDir)
	opts.IncludeRows = withRows
	if rankDir != "" {
		opts.RankDir = rankDir
	}
	if withRows {
		opts.Sampler = c.newSampler()
	}

	spinner := newSpinnerWithContext(ctx, "Rendering table diagram...")
	spinner.Start()

	g, err := runner.Build(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("build graph: %w", err)
	}

	svg, err := layout.RenderSVG(ctx, g, opts.LayoutOptions())
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render SVG: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = filepath.Base(filepath.Clean(tableDir)) + ".svg"
	}
	if err := os.WriteFile(outputPath, svg, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Render complete")
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), false)

	return nil
}
