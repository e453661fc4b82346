package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlindahl/layernet/pkg/netio"
)

// exportCommand creates the export command for converting definitions to
// structural JSON.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [definition.toml]",
		Short: "Export a network definition as a structural JSON document",
		Long: `Export a network definition as a structural JSON document.

The export command loads a TOML definition, builds the connection graph,
and writes it as graph JSON. The JSON form is what the layout and serve
commands store and exchange.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.json)")

	return cmd
}

func (c *CLI) runExport(input, output string) error {
	net, err := loadNetwork(input)
	if err != nil {
		return err
	}
	if err := net.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	out := outputPath(input, output, ".graph.json")
	if err := netio.ExportJSON(net, out); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	g := netio.FromNetwork(net)
	printSuccess("Exported %s", net.Name())
	printFile(out)
	printStats(len(g.Layers), len(g.Connections), false)
	printNewline()
	printNextStep("Layout", "layernet layout "+out)

	return nil
}
