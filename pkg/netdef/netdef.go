// Package netdef loads network definitions from TOML files.
//
// A definition lists layers and connections:
//
//	name = "xor"
//
//	[[layer]]
//	name = "input"
//	shape = [2]
//
//	[[layer]]
//	name = "hidden"
//	shape = [5]
//	activation = "relu"
//
//	[[layer]]
//	name = "output"
//	shape = [1]
//	activation = "sigmoid"
//
//	autoconnect = true
//
// With autoconnect the layers are chained pairwise in file order; otherwise
// explicit [[connection]] entries with from/to keys wire the graph. Shape
// dimensions are positive integers, with 0 as the unspecified wildcard.
package netdef

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/mlindahl/layernet/pkg/errors"
	"github.com/mlindahl/layernet/pkg/network"
)

// Definition is the decoded form of a network definition file.
type Definition struct {
	Name        string          `toml:"name"`
	Autoconnect bool            `toml:"autoconnect"`
	Layers      []LayerDef      `toml:"layer"`
	Connections []ConnectionDef `toml:"connection"`
}

// LayerDef declares one layer.
type LayerDef struct {
	Name       string `toml:"name"`
	Shape      []int  `toml:"shape"`
	Activation string `toml:"activation"`
}

// ConnectionDef declares one directed edge.
type ConnectionDef struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// Parse decodes a TOML definition.
func Parse(data []byte) (Definition, error) {
	var def Definition
	if err := toml.Unmarshal(data, &def); err != nil {
		return Definition{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode definition")
	}
	if len(def.Layers) == 0 {
		return Definition{}, errors.New(errors.ErrCodeInvalidManifest, "definition declares no layers")
	}
	for _, l := range def.Layers {
		if l.Name == "" {
			return Definition{}, errors.New(errors.ErrCodeInvalidManifest, "layer without a name")
		}
		for _, d := range l.Shape {
			if d < 0 {
				return Definition{}, errors.New(errors.ErrCodeInvalidShape,
					"layer %q has negative dimension %d", l.Name, d)
			}
		}
	}
	if def.Autoconnect && len(def.Connections) > 0 {
		return Definition{}, errors.New(errors.ErrCodeInvalidManifest,
			"autoconnect and explicit connections are mutually exclusive")
	}
	return def, nil
}

// ParseFile decodes a TOML definition from a file.
func ParseFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
	}
	return Parse(data)
}

// Build constructs the connection graph a definition describes.
func Build(def Definition) (*network.Network, error) {
	net := network.New(def.Name)
	for _, l := range def.Layers {
		layer := network.NewLayer(l.Name, l.Shape...).WithActivation(l.Activation)
		if err := net.AddLayer(layer); err != nil {
			return nil, err
		}
	}
	if def.Autoconnect {
		if err := net.ConnectAll(); err != nil {
			return nil, err
		}
		return net, nil
	}
	for _, c := range def.Connections {
		if err := net.Connect(c.From, c.To); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// Load parses a definition file and builds its network in one step.
func Load(path string) (*network.Network, error) {
	def, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Build(def)
}
