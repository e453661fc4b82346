package network

import (
	"sync"

	"github.com/mlindahl/layernet/pkg/engine"
	"github.com/mlindahl/layernet/pkg/errors"
)

// Network is the connection graph: an insertion-ordered sequence of layers
// plus a unique name registry. Insertion order is significant: it is the
// fallback ordering for bank resolution and the default chain for
// ConnectAll.
//
// The zero value is not usable; use New. A Network is not safe for
// concurrent structural mutation without external synchronization.
type Network struct {
	name   string
	layers []*Layer
	byName map[string]*Layer

	// Compiled state. Valid only while compiled is true; any structural
	// mutation resets it.
	compiled    bool
	eng         engine.Engine
	model       engine.Executable
	inputBanks  []string
	outputBanks []string

	subMu sync.Mutex
	subs  map[pairKey]*Subgraph
}

// New creates an empty network with the given display name.
func New(name string) *Network {
	return &Network{
		name:   name,
		byName: make(map[string]*Layer),
		subs:   make(map[pairKey]*Subgraph),
	}
}

// Name returns the network's display name.
func (n *Network) Name() string { return n.name }

// Len returns the number of layers.
func (n *Network) Len() int { return len(n.layers) }

// Layers returns the layers in insertion order. The slice is a copy; the
// pointers refer to the live layers.
func (n *Network) Layers() []*Layer {
	out := make([]*Layer, len(n.layers))
	copy(out, n.layers)
	return out
}

// Layer returns the layer with the given name and true, or nil and false.
func (n *Network) Layer(name string) (*Layer, bool) {
	l, ok := n.byName[name]
	return l, ok
}

// Names returns all layer names in insertion order.
func (n *Network) Names() []string { return layerNames(n.layers) }

// AddLayer registers a layer. Order of addition matters for bank resolution
// and ConnectAll. Returns DUPLICATE_LAYER if the name is already taken and
// INVALID_INPUT for a nil layer or empty name.
func (n *Network) AddLayer(l *Layer) error {
	if l == nil || l.name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "layer must have a non-empty name")
	}
	if _, exists := n.byName[l.name]; exists {
		return errors.New(errors.ErrCodeDuplicateLayer, "duplicate layer name %q", l.name)
	}
	n.layers = append(n.layers, l)
	n.byName[l.name] = l
	n.invalidate()
	return nil
}

// Connect adds a directed edge from one layer to another. Returns
// UNKNOWN_LAYER if either name is absent and CYCLE if the edge would make
// the graph cyclic (including self-edges). There is no edge-removal
// operation, so the guard here is what keeps the graph acyclic for life.
func (n *Network) Connect(from, to string) error {
	src, ok := n.byName[from]
	if !ok {
		return errors.New(errors.ErrCodeUnknownLayer, "unknown layer %q", from)
	}
	dst, ok := n.byName[to]
	if !ok {
		return errors.New(errors.ErrCodeUnknownLayer, "unknown layer %q", to)
	}
	if from == to || n.reaches(dst, src) {
		return errors.New(errors.ErrCodeCycle, "connecting %q to %q would create a cycle", from, to)
	}
	src.outgoing = append(src.outgoing, dst)
	dst.incoming = append(dst.incoming, src)
	n.invalidate()
	return nil
}

// ConnectAll chains every layer to the next in insertion order, the
// convenience path for single-path feed-forward networks.
func (n *Network) ConnectAll() error {
	for i := 0; i < len(n.layers)-1; i++ {
		if err := n.Connect(n.layers[i].name, n.layers[i+1].name); err != nil {
			return err
		}
	}
	return nil
}

// Kind returns the classification of the named layer.
func (n *Network) Kind(name string) (Kind, error) {
	l, ok := n.byName[name]
	if !ok {
		return KindUnconnected, errors.New(errors.ErrCodeUnknownLayer, "unknown layer %q", name)
	}
	return l.Kind(), nil
}

// Compiled reports whether the network currently holds valid compiled state.
func (n *Network) Compiled() bool { return n.compiled }

// Model returns the full compiled graph, or nil before Compile.
func (n *Network) Model() engine.Executable { return n.model }

// InputBanks returns the input bank order computed by the last Compile.
func (n *Network) InputBanks() []string {
	out := make([]string, len(n.inputBanks))
	copy(out, n.inputBanks)
	return out
}

// OutputBanks returns the output bank order computed by the last Compile.
func (n *Network) OutputBanks() []string {
	out := make([]string, len(n.outputBanks))
	copy(out, n.outputBanks)
	return out
}

// Validate checks that the network is compilable: at least one layer, and
// no layer left without any edges. A multi-layer network with an isolated
// layer and the degenerate single-layer network are both rejected, since an
// edgeless layer is classified unconnected, never input or output.
func (n *Network) Validate() error {
	if len(n.layers) == 0 {
		return errors.New(errors.ErrCodeEmptyNetwork, "network has no layers")
	}
	for _, l := range n.layers {
		if l.Kind() == KindUnconnected {
			return errors.New(errors.ErrCodeUnconnectedLayer, "layer %q is unconnected", l.name)
		}
	}
	return nil
}

// invalidate drops all compiled state after a structural mutation.
// The subgraph cache is cleared wholesale; entries are always rebuildable.
func (n *Network) invalidate() {
	n.compiled = false
	n.eng = nil
	n.model = nil
	n.inputBanks = nil
	n.outputBanks = nil
	for _, l := range n.layers {
		l.invalidate()
	}
	n.subMu.Lock()
	n.subs = make(map[pairKey]*Subgraph)
	n.subMu.Unlock()
}

// reaches reports whether dst is reachable from src via outgoing edges.
// The visited set is call-local, so concurrent read-only queries are safe.
func (n *Network) reaches(src, dst *Layer) bool {
	visited := make(map[string]bool, len(n.layers))
	var walk func(l *Layer) bool
	walk = func(l *Layer) bool {
		if l == dst {
			return true
		}
		visited[l.name] = true
		for _, next := range l.outgoing {
			if !visited[next.name] && walk(next) {
				return true
			}
		}
		return false
	}
	return walk(src)
}
