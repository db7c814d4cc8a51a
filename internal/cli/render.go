package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file (single format) or base path (multiple)
	formats     []string // output formats: "json", "dot", "svg"
	detailed    bool     // label nodes with layer, index and size
	showDummies bool     // draw dummy vertices as points
	noCache     bool     // bypass the render cache
	refresh     bool     // replay even when a snapshot is cached
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [script]",
		Short: "Replay a script and render the layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with layer, index and size")
	cmd.Flags().BoolVar(&opts.showDummies, "dummies", false, "draw dummy vertices")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().String("cache-dir", "", "render cache directory")
	cmd.Flags().String("redis", "", "Redis address for the render cache")
	cmd.Flags().Duration("cache-ttl", 0, "cache entry lifetime")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "replay even when a snapshot is cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	s, err := c.loadScript(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions()
	popts.Formats = opts.formats
	popts.Detailed = opts.detailed
	popts.ShowDummies = opts.showDummies
	popts.Refresh = opts.refresh

	stop := spin(ctx, "Rendering...")
	result, err := runner.Run(ctx, s, popts)
	stop()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, opts.formats, outputBase(opts.output, path), opts.output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", path)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Nodes, result.Stats.Connectors, result.CacheInfo.SnapshotHit)
	return nil
}

// writeArtifacts writes each rendered format. A single format goes to output
// verbatim when given; otherwise files are named base.<format>.
func writeArtifacts(artifacts map[string][]byte, formats []string, base, output string) ([]string, error) {
	var paths []string
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		p := base + "." + f
		if len(formats) == 1 && output != "" {
			p = output
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
