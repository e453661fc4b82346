package network

import (
	"github.com/mlindahl/layernet/pkg/engine"
)

// Kind classifies a layer by its position in the live topology.
// It is always recomputed from the adjacency lists, never stored, so it
// cannot drift out of sync with the graph.
type Kind int

// Layer kinds.
const (
	// KindUnconnected is a layer with no edges at all.
	KindUnconnected Kind = iota
	// KindInput is a layer with outgoing edges only.
	KindInput
	// KindOutput is a layer with incoming edges only.
	KindOutput
	// KindHidden is a layer with both incoming and outgoing edges.
	KindHidden
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindHidden:
		return "hidden"
	default:
		return "unconnected"
	}
}

// Layer is a named vertex in the connection graph. The name is immutable
// after creation; shape and activation describe the transformation the
// compute engine will perform. Adjacency is stored as pointers into the
// owning Network's registry, so layers are only meaningful inside the
// Network they were added to.
type Layer struct {
	name       string
	shape      engine.Shape
	activation string

	incoming []*Layer
	outgoing []*Layer

	// Compiled caches. Not part of identity; cleared on any topology change.
	handle     engine.Handle
	inputNames []string
}

// NewLayer creates a layer with the given name and shape dimensions.
// A zero dimension is the "unspecified" wildcard.
func NewLayer(name string, shape ...int) *Layer {
	return &Layer{name: name, shape: engine.Shape(shape)}
}

// WithActivation sets the activation tag and returns the layer for chaining.
func (l *Layer) WithActivation(activation string) *Layer {
	l.activation = activation
	return l
}

// Name returns the layer's unique name.
func (l *Layer) Name() string { return l.name }

// Shape returns the layer's declared shape.
func (l *Layer) Shape() engine.Shape { return l.shape }

// Activation returns the activation tag, or "" when none was declared.
func (l *Layer) Activation() string { return l.activation }

// Kind derives the layer's classification from its current edge counts.
func (l *Layer) Kind() Kind {
	switch {
	case len(l.incoming) == 0 && len(l.outgoing) == 0:
		return KindUnconnected
	case len(l.incoming) == 0:
		return KindInput
	case len(l.outgoing) == 0:
		return KindOutput
	default:
		return KindHidden
	}
}

// Incoming returns the names of layers with edges into this one,
// in connect-call order. The slice is a copy.
func (l *Layer) Incoming() []string { return layerNames(l.incoming) }

// Outgoing returns the names of layers this one has edges to,
// in connect-call order. The slice is a copy.
func (l *Layer) Outgoing() []string { return layerNames(l.outgoing) }

// InputNames returns the resolved input-name set: the flattened
// concatenation of the ancestors' input names (see ResolveBanks for the
// merge rule). It is populated by Compile and empty before it.
func (l *Layer) InputNames() []string {
	out := make([]string, len(l.inputNames))
	copy(out, l.inputNames)
	return out
}

// Handle returns the compiled handle for this layer, or nil before Compile.
func (l *Layer) Handle() engine.Handle { return l.handle }

// invalidate clears the compiled caches after a topology change.
func (l *Layer) invalidate() {
	l.handle = nil
	l.inputNames = nil
}

func layerNames(layers []*Layer) []string {
	names := make([]string, len(layers))
	for i, l := range layers {
		names[i] = l.name
	}
	return names
}
