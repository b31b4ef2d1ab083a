package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qtranspile/pkg/pipeline"
	"github.com/matzehuels/qtranspile/pkg/target"
)

// drawOpts holds the command-line flags for the draw command.
type drawOpts struct {
	output   string // output file; stdout when empty
	format   string // dot or svg
	detailed bool   // node IDs and full instructions as labels
	coupling bool   // draw the target device instead of the circuit
	target   string // target for --coupling
}

// drawCommand creates the draw command.
func (c *CLI) drawCommand() *cobra.Command {
	opts := drawOpts{
		format: pipeline.FormatSVG,
		target: pipeline.DefaultTarget,
	}

	cmd := &cobra.Command{
		Use:   "draw [file]",
		Short: "Draw a circuit DAG or a device coupling map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			drawOpts := pipeline.DrawOptions{
				Format:   opts.format,
				Detailed: opts.detailed,
				Coupling: opts.coupling,
			}
			if opts.coupling {
				if drawOpts.Device, err = target.Resolve(opts.target); err != nil {
					return err
				}
			}

			data, err := pipeline.Draw(cmd.Context(), circuitName(args[0]), string(src), drawOpts)
			if err != nil {
				return err
			}
			if opts.output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			printSuccess("Drew %s", circuitName(args[0]))
			printFile(opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with IDs and full instructions")
	cmd.Flags().BoolVar(&opts.coupling, "coupling", false, "draw the target coupling map with the circuit's placement")
	cmd.Flags().StringVarP(&opts.target, "target", "t", opts.target, "target for --coupling")

	return cmd
}
