package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// graphCommand creates the graph command for exporting the recorded
// dependency graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the recorded dependency graph",
		Long: `Export the dependency graph recorded by earlier builds.

The graph maps each document to the documents and collections it reads
from; incremental builds use it to decide what a changed file affects.
Formats: dot (Graphviz source, default) and svg (rendered).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout for dot, graph.svg for svg)")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, output, format string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config %s: %w", c.ConfigPath, err)
	}

	runner, err := c.newRunner(ctx, cfg, nil, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	hit, err := runner.LoadUses(ctx, cfg.Title)
	if err != nil {
		return fmt.Errorf("load dependency graph: %w", err)
	}
	if !hit {
		printWarning("No recorded dependency graph")
		printNextStep("Record one", "eleventy build")
		return nil
	}

	switch format {
	case "dot":
		dot := runner.Uses.ToDOT()
		if output == "" {
			fmt.Print(dot)
			return nil
		}
		if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
	case "svg":
		svg, err := runner.Uses.RenderSVG(ctx)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		if output == "" {
			output = "graph.svg"
		}
		if err := os.WriteFile(output, svg, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
	default:
		return fmt.Errorf("invalid format: %q (must be dot or svg)", format)
	}

	printSuccess("Graph exported")
	if output != "" {
		printFile(output)
	}
	printDetail("%d tracked files", runner.Uses.Len())
	return nil
}
