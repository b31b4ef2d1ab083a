package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qtranspile/pkg/pipeline"
)

// layersCommand creates the layers command.
func (c *CLI) layersCommand() *cobra.Command {
	var (
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layers [file]",
		Short: "Print the serial layers of a circuit",
		Long: `Layers prints the circuit grouped into layers of operations that share no
wire, in the order they can execute. No pass runs; the circuit is shown as
written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			layers, err := runner.Layers(cmd.Context(), circuitName(args[0]), string(src))
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(layers)
			}
			return writeLayers(cmd.OutOrStdout(), layers)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print layers as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")

	return cmd
}

// writeLayers prints one line per layer: its index and its operations.
func writeLayers(w io.Writer, layers []pipeline.Layer) error {
	width := len(fmt.Sprint(max(len(layers)-1, 0)))
	for _, l := range layers {
		idx := StyleNumber.Render(fmt.Sprintf("%*d", width, l.Index))
		if _, err := fmt.Fprintf(w, "%s  %s\n", idx, strings.Join(l.Ops, StyleDim.Render("; "))); err != nil {
			return err
		}
	}
	return nil
}
