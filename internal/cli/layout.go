package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
	"github.com/matzehuels/flowlayout/pkg/view"
)

// stdout as an output path writes to standard output.
const stdout = "-"

// layoutOpts holds the flags shared by layout and render.
type layoutOpts struct {
	output    string
	expand    []string
	expandAll bool
	pick      bool
	refresh   bool
}

func (o *layoutOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file, - for stdout")
	cmd.Flags().StringSliceVarP(&o.expand, "expand", "e", nil, "keys of sub-processes to expand (comma-separated, nested keys as parent/child)")
	cmd.Flags().BoolVar(&o.expandAll, "expand-all", false, "expand every sub-process")
	cmd.Flags().BoolVar(&o.pick, "pick", false, "choose sub-processes to expand interactively, starting from --expand")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "recompute even if cached")
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [graph.json|graph.yaml]",
		Short: "Compute the routed view of a task-flow graph",
		Long: `Compute the routed view of a task-flow graph.

The output is JSON: every visible node with its position and size, and every
edge with its endpoints and breakpoints. Sub-processes stay collapsed unless
named with --expand.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// runLayout loads the graph, computes the view, and writes output.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, input string, lo layoutOpts) error {
	p, opts, err := c.prepare(ctx, input, lo)
	if errors.Is(err, errPickCanceled) {
		printInfo(w, "No selection made")
		return nil
	}
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	v, cacheHit, err := runner.Layout(ctx, p, opts)
	if err != nil {
		return err
	}
	prog.done("laid out", "nodes", len(v.Nodes), "edges", len(v.Edges),
		"expanded", len(opts.Expand), "cached", cacheHit)

	data, err := view.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode view: %w", err)
	}

	outputPath := outputPath(lo.output, input, ".view.json")
	if err := writeOutput(w, outputPath, data); err != nil {
		return err
	}
	if outputPath == stdout {
		return nil
	}

	printSummary(w, newSummary("Layout complete", outputPath, v, cacheHit))
	printNextStep(w, "Render", appName+" render -f svg "+input)
	return nil
}

// prepare parses the input and merges flags into the configured options.
func (c *CLI) prepare(ctx context.Context, input string, lo layoutOpts) (*flow.Pipeline, pipeline.Options, error) {
	p, err := pipeline.ParseFile(ctx, input)
	if err != nil {
		return nil, pipeline.Options{}, err
	}

	opts := c.options()
	opts.Expand = lo.expand
	if lo.expandAll {
		opts.Expand = expandAll(p)
	}
	if lo.pick {
		if opts.Expand, err = pickExpand(ctx, p, opts.Expand); err != nil {
			return nil, pipeline.Options{}, err
		}
	}
	opts.Refresh = lo.refresh
	return p, opts, nil
}

// expandAll lists the key of every sub-process at every depth.
func expandAll(p *flow.Pipeline) []string {
	set := view.NewExpandSet()
	for _, sp := range subProcesses(p) {
		set[sp.Key] = struct{}{}
	}
	return set.Keys()
}

// outputPath resolves the output flag; empty means <input><suffix>.
func outputPath(flag, input, suffix string) string {
	if flag != "" {
		return flag
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// writeOutput writes data to path, or to w when path is "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == stdout {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
