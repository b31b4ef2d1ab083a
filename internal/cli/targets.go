package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qtranspile/pkg/target"
)

// targetsCommand creates the targets command.
func (c *CLI) targetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the builtin targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), targetsTable(target.All()))
			return nil
		},
	}
}

// targetsTable renders one row per target.
func targetsTable(targets []*target.Target) string {
	rows := make([][]string, 0, len(targets))
	for _, t := range targets {
		rows = append(rows, []string{
			t.Name,
			strconv.Itoa(t.NumQubits()),
			strings.Join(t.Basis, " "),
			t.Description,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Target", "Qubits", "Basis", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return styleHeader.Padding(0, 1)
			case col == 0:
				return base.Inherit(StyleTitle)
			case col == 1:
				return base.Inherit(StyleNumber)
			default:
				return base.Inherit(StyleDim)
			}
		}).
		String()
}
