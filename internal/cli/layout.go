package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlindahl/layernet/pkg/cache"
	"github.com/mlindahl/layernet/pkg/layout"
	"github.com/mlindahl/layernet/pkg/netio"
)

// layoutCommand creates the layout command for computing layered layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		direction string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "layout [network]",
		Short: "Compute the layered layout of a network",
		Long: `Compute the layered layout of a network.

The layout command takes a definition (.toml) or structure file (.json),
assigns each layer to a level (its longest path from the inputs), orders
the rows by input-bank position, and writes the result as layout JSON.

Results are cached locally under a content hash, so repeated runs on an
unchanged network are instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, direction, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&direction, "direction", "TB", "rank direction: TB or LR")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output, direction string, noCache bool) error {
	net, err := loadNetwork(input)
	if err != nil {
		return err
	}
	if err := net.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	g := netio.FromNetwork(net)
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}

	artifacts, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer artifacts.Close()

	key := cache.NewDefaultKeyer().LayoutKey(cache.Hash(raw), cache.LayoutKeyOpts{Direction: direction})
	data, hit, err := artifacts.Get(ctx, key)
	if err != nil {
		c.Logger.Warn("cache read failed", "err", err)
	}
	if !hit {
		l := layout.Compute(net)
		data, err = json.MarshalIndent(l, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal layout: %w", err)
		}
		if err := artifacts.Set(ctx, key, data, 0); err != nil {
			c.Logger.Warn("cache write failed", "err", err)
		}
	}

	out := outputPath(input, output, ".layout.json")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	printSuccess("Layout complete")
	printFile(out)
	printStats(len(g.Layers), len(g.Connections), hit)
	printNewline()
	printNextStep("Render", "layernet render "+input)

	return nil
}
