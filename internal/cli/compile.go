package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlindahl/layernet/pkg/engine"
)

// compileCommand creates the compile command for validating and compiling networks.
func (c *CLI) compileCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "compile [network]",
		Short: "Validate and compile a network against the symbolic engine",
		Long: `Validate and compile a network against the symbolic engine.

The compile command takes a definition (.toml) or structure file (.json),
checks the graph for cycles and unconnected layers, resolves the input and
output banks, and builds the full model. With --from and --to it also
extracts the subnetwork between two layers and prints its expression.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompile(args[0], from, to)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start layer for subnetwork extraction")
	cmd.Flags().StringVar(&to, "to", "", "end layer for subnetwork extraction")

	return cmd
}

func (c *CLI) runCompile(input, from, to string) error {
	net, err := loadNetwork(input)
	if err != nil {
		return err
	}

	p := newProgress(c.Logger)
	if err := net.Compile(engine.NewSymbolic()); err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	p.done(fmt.Sprintf("Compiled %d layers", net.Len()))

	printSuccess("Network %s compiles", net.Name())
	printKeyValue("inputs", strings.Join(net.InputBanks(), ", "))
	printKeyValue("outputs", strings.Join(net.OutputBanks(), ", "))

	shapes := net.Model().OutputShapes()
	strs := make([]string, len(shapes))
	for i, s := range shapes {
		strs[i] = s.String()
	}
	printKeyValue("shapes", strings.Join(strs, ", "))

	for i, row := range net.LevelOrdering() {
		printDetail("level %d: %s", i, strings.Join(row, ", "))
	}

	if from != "" || to != "" {
		if from == "" || to == "" {
			return fmt.Errorf("--from and --to must be given together")
		}
		sub, err := net.Subgraph(from, to)
		if err != nil {
			return fmt.Errorf("subnetwork %s→%s: %w", from, to, err)
		}
		printNewline()
		printInfo("Subnetwork %s → %s", sub.Start, sub.End)
		if expr, ok := sub.Output.(fmt.Stringer); ok {
			printDetail("%s", expr.String())
		}
		printDetail("shape: %s", sub.Output.Shape().String())
	}

	return nil
}
