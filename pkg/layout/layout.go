// Package layout turns a connection graph into a layered layout document
// and renders it through Graphviz.
//
// The document groups layers into rows by their assigned level (longest
// path from the inputs), ordered within a row by input-bank position so the
// same network always renders the same way. It is a plain serializable
// value: the renderer, the HTTP API, and the artifact cache all consume it.
package layout

import (
	"github.com/mlindahl/layernet/pkg/network"
)

// Node is one layer in the layout document.
type Node struct {
	Name       string `json:"name" bson:"name"`
	Shape      []int  `json:"shape,omitempty" bson:"shape,omitempty"`
	Activation string `json:"activation,omitempty" bson:"activation,omitempty"`
	Kind       string `json:"kind" bson:"kind"`
	Level      int    `json:"level" bson:"level"`
}

// Edge is one directed connection in the layout document.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// Layout is the serializable layered layout of a network.
type Layout struct {
	Name        string     `json:"name,omitempty" bson:"name,omitempty"`
	Rows        [][]string `json:"rows" bson:"rows"`
	InputBanks  []string   `json:"input_banks,omitempty" bson:"input_banks,omitempty"`
	OutputBanks []string   `json:"output_banks,omitempty" bson:"output_banks,omitempty"`
	Nodes       []Node     `json:"nodes" bson:"nodes"`
	Edges       []Edge     `json:"edges,omitempty" bson:"edges,omitempty"`
}

// RowCount returns the number of levels.
func (l Layout) RowCount() int { return len(l.Rows) }

// Compute assembles the layout document for a network: level assignment,
// row ordering, bank orders, and the node/edge lists in insertion order.
func Compute(net *network.Network) Layout {
	levels := net.AssignLevels()
	inputs, outputs := net.ResolveBanks()

	out := Layout{
		Name:        net.Name(),
		Rows:        net.LevelOrdering(),
		InputBanks:  inputs,
		OutputBanks: outputs,
	}
	for _, l := range net.Layers() {
		out.Nodes = append(out.Nodes, Node{
			Name:       l.Name(),
			Shape:      l.Shape(),
			Activation: l.Activation(),
			Kind:       l.Kind().String(),
			Level:      levels[l.Name()],
		})
		for _, to := range l.Outgoing() {
			out.Edges = append(out.Edges, Edge{From: l.Name(), To: to})
		}
	}
	return out
}
