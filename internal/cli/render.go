package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	layoutOpts
	format   string // output format: dot, svg, png or json
	detailed bool   // add id and status lines to node labels
}

// renderCommand creates the render command for painting a graph.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: pipeline.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render [graph.json|graph.yaml]",
		Short: "Render a task-flow graph to DOT, SVG or PNG",
		Long: `Render a task-flow graph to DOT, SVG or PNG.

Nodes are pinned at their computed positions and drawn by Graphviz with the
neato engine, so the picture matches the layout command's JSON exactly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), png, dot, json")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show ids and status in node labels")

	return cmd
}

// runRender loads the graph, lays it out, renders it and writes output.
func (c *CLI) runRender(ctx context.Context, w io.Writer, input string, ro renderOpts) error {
	p, opts, err := c.prepare(ctx, input, ro.layoutOpts)
	if err == errPickCanceled {
		printInfo(w, "No selection made")
		return nil
	}
	if err != nil {
		return err
	}
	opts.Format = ro.format
	opts.Detailed = ro.detailed

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, p, opts)
	if err != nil {
		return err
	}
	prog.done("rendered", "format", opts.Format, "bytes", len(result.Artifact),
		"layout_cached", result.CacheInfo.LayoutHit, "cached", result.CacheInfo.RenderHit)

	outputPath := outputPath(ro.output, input, "."+opts.Format)
	if err := writeOutput(w, outputPath, result.Artifact); err != nil {
		return err
	}
	if outputPath == stdout {
		return nil
	}

	printSummary(w, newSummary("Render complete", outputPath, result.View, result.CacheInfo.RenderHit))
	return nil
}
