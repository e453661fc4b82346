// Package netio serializes network structure for storage and transport.
//
// The format captures exactly what is needed to restore a connection graph:
// the layer sequence (name, shape, activation) and the edge list, both in
// insertion order. Compiled handles and subgraph caches are deliberately
// absent; they are always rebuildable and are never persisted.
//
// The types carry both json and bson tags so the same document serves files,
// the HTTP API, and the MongoDB-backed store. Round-trip fidelity holds:
// export → import produces a network with identical structure and ordering.
package netio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mlindahl/layernet/pkg/engine"
	"github.com/mlindahl/layernet/pkg/network"
)

// Graph is the canonical structural description of a network.
type Graph struct {
	Name        string       `json:"name,omitempty" bson:"name,omitempty"`
	Layers      []Layer      `json:"layers" bson:"layers"`
	Connections []Connection `json:"connections" bson:"connections"`
}

// Layer describes one layer. Kind is derived from the topology and included
// for readers; it is ignored on import.
type Layer struct {
	Name       string `json:"name" bson:"name"`
	Shape      []int  `json:"shape,omitempty" bson:"shape,omitempty"`
	Activation string `json:"activation,omitempty" bson:"activation,omitempty"`
	Kind       string `json:"kind,omitempty" bson:"kind,omitempty"`
}

// Connection is one directed edge.
type Connection struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// FromNetwork captures a network's structure. Layers keep insertion order;
// connections are emitted per source layer in adjacency order, so the
// output is deterministic for identical construction order.
func FromNetwork(net *network.Network) Graph {
	g := Graph{Name: net.Name()}
	for _, l := range net.Layers() {
		g.Layers = append(g.Layers, Layer{
			Name:       l.Name(),
			Shape:      l.Shape(),
			Activation: l.Activation(),
			Kind:       l.Kind().String(),
		})
		for _, to := range l.Outgoing() {
			g.Connections = append(g.Connections, Connection{From: l.Name(), To: to})
		}
	}
	return g
}

// ToNetwork restores a network from its structural description.
func ToNetwork(g Graph) (*network.Network, error) {
	net := network.New(g.Name)
	for _, l := range g.Layers {
		layer := network.NewLayer(l.Name, l.Shape...).WithActivation(l.Activation)
		if err := net.AddLayer(layer); err != nil {
			return nil, fmt.Errorf("add layer %s: %w", l.Name, err)
		}
	}
	for _, c := range g.Connections {
		if err := net.Connect(c.From, c.To); err != nil {
			return nil, fmt.Errorf("connect %s→%s: %w", c.From, c.To, err)
		}
	}
	return net, nil
}

// EngineShape returns the layer's shape as an engine shape.
func (l Layer) EngineShape() engine.Shape { return engine.Shape(l.Shape) }

// WriteJSON encodes the graph as indented JSON.
func WriteJSON(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a graph from JSON.
func ReadJSON(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	return g, nil
}

// ExportJSON writes a network's structure to a JSON file at path.
func ExportJSON(net *network.Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(FromNetwork(net), f)
}

// ImportJSON restores a network from a JSON file at path.
func ImportJSON(path string) (*network.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := ReadJSON(f)
	if err != nil {
		return nil, err
	}
	return ToNetwork(g)
}
