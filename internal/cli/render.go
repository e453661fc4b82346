package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlindahl/layernet/pkg/cache"
	"github.com/mlindahl/layernet/pkg/layout"
	"github.com/mlindahl/layernet/pkg/netio"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"svg": true, "png": true, "dot": true}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		direction  string
		detailed   bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "render [network]",
		Short: "Render a network as a layered diagram",
		Long: `Render a network as a layered diagram.

The render command takes a definition (.toml) or structure file (.json),
computes the layered layout, and renders it through Graphviz. Each level
becomes one rank in the drawing, inputs and outputs are color-coded, and
--detailed adds shape and activation annotations to the node labels.

Rendered artifacts are cached locally under a content hash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := validateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], output, formats, direction, detailed, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input name)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().StringVar(&direction, "direction", "TB", "rank direction: TB or LR")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show shape and activation in node labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'png', or 'dot')", f)
		}
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, input, output string, formats []string, direction string, detailed, noCache bool) error {
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
	graphHash := cache.Hash(raw)

	artifacts, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer artifacts.Close()
	keyer := cache.NewDefaultKeyer()

	dot := layout.ToDOT(layout.Compute(net), layout.Options{Direction: direction, Detailed: detailed})

	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()

	var (
		outputs []string
		cached  bool
	)
	for _, format := range formats {
		data, hit, err := c.renderFormat(ctx, artifacts, keyer, graphHash, dot, format, direction, detailed)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render %s: %w", format, err)
		}
		cached = cached || hit

		out := outputPath(input, output, "") + "." + format
		if output != "" && len(formats) == 1 {
			out = output
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("write output %s: %w", out, err)
		}
		outputs = append(outputs, out)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Render complete")
	for _, out := range outputs {
		printFile(out)
	}
	printStats(len(g.Layers), len(g.Connections), cached)

	return nil
}

// renderFormat produces one artifact, consulting the cache first. DOT output
// is never cached since emitting it is cheaper than the cache round-trip.
func (c *CLI) renderFormat(ctx context.Context, artifacts cache.Cache, keyer cache.Keyer, graphHash, dot, format, direction string, detailed bool) ([]byte, bool, error) {
	if format == "dot" {
		return []byte(dot), false, nil
	}

	key := keyer.ArtifactKey(graphHash, cache.ArtifactKeyOpts{
		Format:    format,
		Direction: direction,
		Detailed:  detailed,
	})

	if data, hit, err := artifacts.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case "svg":
		data, err = layout.RenderSVG(ctx, dot)
	case "png":
		data, err = layout.RenderPNG(ctx, dot)
	}
	if err != nil {
		return nil, false, err
	}

	if err := artifacts.Set(ctx, key, data, 0); err != nil {
		c.Logger.Warn("cache write failed", "err", err)
	}
	return data, false, nil
}
