// Package cli implements the layernet command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mlindahl/layernet/pkg/buildinfo"
	"github.com/mlindahl/layernet/pkg/cache"
	"github.com/mlindahl/layernet/pkg/netdef"
	"github.com/mlindahl/layernet/pkg/netio"
	"github.com/mlindahl/layernet/pkg/network"
)

// appName is the application name used for directories and display.
const appName = "layernet"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "layernet",
		Short:        "Layernet builds and visualizes layered computation networks",
		Long:         `Layernet is a CLI tool for building networks of named computational layers, compiling them against a backend engine, and rendering their layered structure.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.compileCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache creates the artifact cache for CLI use.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/layernet/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loadNetwork builds a network from a definition or structure file.
// TOML files go through the definition loader, everything else is read
// as a structural JSON document.
func loadNetwork(path string) (*network.Network, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		net, err := netdef.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load definition %s: %w", path, err)
		}
		return net, nil
	}
	net, err := netio.ImportJSON(path)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", path, err)
	}
	return net, nil
}

// outputPath derives an output file name from the input when -o is unset.
func outputPath(input, explicit, suffix string) string {
	if explicit != "" {
		return explicit
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + suffix
}
