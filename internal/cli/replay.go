package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

// replayOpts holds the command-line flags for the replay command.
type replayOpts struct {
	output string // snapshot path; stdout when empty
	steps  bool   // print the actions of every edit
	trace  string // write the causal trace of the last edit as DOT
}

// replayCommand creates the replay command.
func (c *CLI) replayCommand() *cobra.Command {
	var opts replayOpts

	cmd := &cobra.Command{
		Use:   "replay [script]",
		Short: "Apply an edit script and write the resulting layout",
		Long: `Replay applies every edit of a .toml or .json script to a fresh engine
and writes the final snapshot as JSON.

With --steps, each edit is listed with the layout actions it produced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "snapshot output file (default stdout)")
	cmd.Flags().BoolVar(&opts.steps, "steps", false, "print the actions of every edit")
	cmd.Flags().StringVar(&opts.trace, "trace", "", "write the causal trace of the last edit as DOT")

	return cmd
}

func (c *CLI) runReplay(ctx context.Context, path string, opts replayOpts) error {
	s, err := c.loadScript(path)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	popts := c.pipelineOptions()
	popts.Steps = opts.steps || opts.trace != ""
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	e, steps, err := pipeline.Replay(ctx, s, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Replayed %d edits", len(s.Edits)))

	if opts.steps {
		printSteps(os.Stderr, steps)
	}
	if opts.trace != "" && len(steps) > 0 {
		last := steps[len(steps)-1]
		data, err := layout.MarshalTrace(last.Edit.String(), last.Actions)
		if err != nil {
			return fmt.Errorf("encode trace: %w", err)
		}
		if err := os.WriteFile(opts.trace, data, 0o644); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
		printFile(opts.trace)
	}

	snap := e.Snapshot()
	if opts.output == "" {
		return graph.WriteLayout(snap, os.Stdout)
	}
	if err := graph.WriteLayoutFile(snap, opts.output); err != nil {
		return err
	}
	printSuccess("Layout written")
	printFile(opts.output)
	printStats(len(snap.RealNodes()), len(snap.Connectors), false)
	printNextStep("Render it", fmt.Sprintf("%s render %s", appName, path))
	return nil
}

// printSteps lists every edit and the actions it produced; each action is
// indented under the action that caused it.
func printSteps(w io.Writer, steps []pipeline.Step) {
	for _, st := range steps {
		fmt.Fprintf(w, "%s %s\n", StyleNumber.Render(fmt.Sprintf("%3d", st.Index)), StyleTitle.Render(st.Edit.String()))
		depth := make([]int, len(st.Actions))
		for i, a := range st.Actions {
			if a.Cause >= 0 && a.Cause < i {
				depth[i] = depth[a.Cause] + 1
			}
			fmt.Fprintf(w, "    %*s%s\n", 2*depth[i], "", fmtAction(a))
		}
	}
}
