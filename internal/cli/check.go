package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check [script]",
		Short: "Replay a script and verify the layout invariants",
		Long: `Check replays a script and reports invariant violations, boxes closer
than the horizontal gap and the number of connector crossings.

With --strict, overlaps also fail the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when boxes overlap")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, path string, strict bool) error {
	s, err := c.loadScript(path)
	if err != nil {
		return err
	}
	popts := c.pipelineOptions()
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	e, _, err := pipeline.Replay(ctx, s, popts)
	if err != nil {
		return err
	}

	if err := e.Validate(); err != nil {
		printError("Invariant violated")
		printDetail("%s", errors.UserMessage(err))
		return err
	}

	overlaps := e.Overlaps()
	printKeyValue("Nodes", fmt.Sprint(e.NodeCount()))
	printKeyValue("Connectors", fmt.Sprint(len(e.Connectors())))
	printKeyValue("Crossings", fmt.Sprint(e.Crossings()))
	printKeyValue("Overlaps", fmt.Sprint(len(overlaps)))
	for _, o := range overlaps {
		printWarning("%s", o)
	}

	if strict && len(overlaps) > 0 {
		return errors.New(errors.ErrCodeInvariant, "%d overlapping pairs", len(overlaps))
	}
	printSuccess("Layout is consistent")
	return nil
}
