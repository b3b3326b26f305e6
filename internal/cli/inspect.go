package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/icemap-dev/icemap/pkg/graph"
	"github.com/icemap-dev/icemap/pkg/model"
)

// inspectCommand creates the inspect command for examining table structure.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		jsonOut  string
		withRows bool
		maxFiles int
	)

	cmd := &cobra.Command{
		Use:   "inspect [table-dir]",
		Short: "Load an Iceberg table and print its structure",
		Long: `Load an Iceberg table directory and print its structure: metadata
versions in chronological order, the snapshots each version references,
and the manifests and files under every snapshot.

Read failures never abort the inspection; they are printed inline at the
point in the tree where they occurred.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], jsonOut, withRows, maxFiles)
		},
	}

	cmd.Flags().StringVarP(&jsonOut, "json", "j", "", "write the graph as JSON to this file instead of printing")
	cmd.Flags().BoolVar(&withRows, "rows", false, "sample content rows from data files")
	cmd.Flags().IntVar(&maxFiles, "max-files", 0, "max files shown per manifest (default from config)")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, tableDir, jsonOut string, withRows bool, maxFiles int) error {
	prog := newProgress(c.Logger)

	builder := model.NewBuilder(nil, c.Logger)
	table, err := builder.Load(tableDir)
	if err != nil {
		return fmt.Errorf("load table %s: %w", tableDir, err)
	}
	prog.done(fmt.Sprintf("Loaded %d metadata versions", len(table.Versions)))

	if jsonOut != "" {
		opts := graph.Options{IncludeRows: withRows, MaxFilesPerManifest: maxFiles, Logger: c.Logger}
		if withRows {
			opts.Sampler = c.newSampler()
		}
		g, err := graph.Build(ctx, table, opts)
		if err != nil {
			return fmt.Errorf("build graph: %w", err)
		}
		if err := g.WriteFile(jsonOut); err != nil {
			return err
		}
		printSuccess("Graph written")
		printFile(jsonOut)
		printStats(g.NodeCount(), g.EdgeCount(), false)
		return nil
	}

	c.printTable(table)
	return nil
}

// printTable renders the model as an indented tree.
func (c *CLI) printTable(table *model.Table) {
	fmt.Println(StyleTitle.Render(table.Name))
	if table.VersionHint != "" {
		printKeyValue("hint", table.VersionHint)
	}
	printKeyValue("path", table.Path)
	printNewline()

	for _, re := range table.Errors {
		printError("[%s] %s", re.Stage, re.Message)
	}

	seen := make(map[int64]bool)
	for _, v := range table.Versions {
		label := filepath.Base(v.Path)
		if n, ok := v.VersionNumber(); ok {
			fmt.Println(StyleHighlight.Render(fmt.Sprintf("version %d", n)) + " " + StyleDim.Render(label))
		} else {
			fmt.Println(StyleHighlight.Render(label))
		}

		for _, s := range v.Snapshots {
			if seen[s.ID] {
				printDetail("snapshot %d (shared)", s.ID)
				continue
			}
			seen[s.ID] = true
			c.printSnapshot(s)
		}
	}
}

func (c *CLI) printSnapshot(s *model.Snapshot) {
	ts := "no timestamp"
	if s.Info.TimestampMs != nil {
		ts = fmt.Sprintf("ts %d", *s.Info.TimestampMs)
	}
	printDetail("snapshot %d · %s · %d manifests", s.ID, ts, len(s.Manifests))

	for _, re := range s.Errors {
		fmt.Println("    " + styleIconError.Render(iconError) + " " + StyleWarning.Render(fmt.Sprintf("[%s] %s", re.Stage, re.Message)))
	}
	for _, m := range s.Manifests {
		kind := "data"
		if m.Entry.IsDeletes() {
			kind = "deletes"
		}
		fmt.Printf("    %s %s · %s · %d files\n",
			StyleDim.Render(iconArrow),
			StyleValue.Render(filepath.Base(m.Path)),
			StyleNumber.Render(kind),
			len(m.Files))
		for _, re := range m.Errors {
			fmt.Println("      " + styleIconError.Render(iconError) + " " + StyleWarning.Render(re.Message))
		}
	}
}
