package network

import (
	"github.com/mlindahl/layernet/pkg/engine"
	"github.com/mlindahl/layernet/pkg/errors"
)

// pairKey identifies a compiled sub-graph by its (start, end) layer names.
type pairKey struct {
	start string
	end   string
}

// Subgraph is a compiled sub-graph rooted at a stand-in input for the start
// layer and ending at the end layer. Output is the end layer's handle under
// that stand-in; Model is the executable segment accepting one value at the
// start layer.
type Subgraph struct {
	Start  string
	End    string
	Output engine.Handle
	Model  engine.Executable
}

// Compile validates the network, resolves bank orders, builds every layer's
// compiled handle through the engine, and freezes the full executable graph.
//
// Handles are built in topological order: input layers become placeholders;
// other layers compose their parents' handles (concatenated via the engine
// when there is more than one parent) with their own transformation. The
// resolved input-name sets are computed structurally first, so they are
// available even if the engine rejects a merge.
//
// Compile may be called again after structural mutation; it rebuilds
// everything from scratch, including the subgraph cache, which is cleared.
func (n *Network) Compile(eng engine.Engine) error {
	if eng == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil engine")
	}
	if err := n.Validate(); err != nil {
		return err
	}

	inputs, outputs := n.ResolveBanks()
	inputNames := n.resolveInputNames()

	for _, l := range n.Sorted() {
		l.inputNames = inputNames[l.name]

		if l.Kind() == KindInput {
			handle, err := eng.Placeholder(l.name, l.shape)
			if err != nil {
				return errors.Wrap(errors.GetCode(err), err, "input layer %q", l.name)
			}
			l.handle = handle
			continue
		}

		in, err := n.composeIncoming(eng, l, func(parent *Layer) (engine.Handle, bool) {
			return parent.handle, parent.handle != nil
		})
		if err != nil {
			return err
		}
		handle, err := eng.Apply(in, l.activation, l.shape)
		if err != nil {
			return errors.Wrap(errors.GetCode(err), err, "layer %q", l.name)
		}
		l.handle = handle
	}

	inputHandles := make([]engine.Handle, len(inputs))
	for i, name := range inputs {
		inputHandles[i] = n.byName[name].handle
	}
	outputHandles := make([]engine.Handle, len(outputs))
	for i, name := range outputs {
		outputHandles[i] = n.byName[name].handle
	}

	model, err := eng.Compile(inputHandles, outputHandles)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "compile network %q", n.name)
	}

	n.eng = eng
	n.model = model
	n.inputBanks = inputs
	n.outputBanks = outputs
	n.compiled = true
	n.subMu.Lock()
	n.subs = make(map[pairKey]*Subgraph)
	n.subMu.Unlock()
	return nil
}

// composeIncoming merges a layer's parent handles into the single handle the
// layer's own transformation is applied to. lookup resolves a parent to its
// handle in the current compilation context; parents without a handle are
// skipped (they are upstream of an injected start and carry no value).
func (n *Network) composeIncoming(eng engine.Engine, l *Layer, lookup func(*Layer) (engine.Handle, bool)) (engine.Handle, error) {
	var handles []engine.Handle
	for _, parent := range l.incoming {
		if h, ok := lookup(parent); ok {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "layer %q has no compiled ancestors", l.name)
	}
	if len(handles) == 1 {
		return handles[0], nil
	}
	merged, err := eng.Merge(handles)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "merge into layer %q", l.name)
	}
	return merged, nil
}

// Subgraph returns the compiled sub-graph for the ordered (start, end) pair,
// building and memoizing it on first request. Repeated calls with the same
// pair return the identical *Subgraph with no rebuild, which is what makes
// repeated interactive probes from the same start cheap.
//
// Building one pair populates the cache for every (start, node) on the way,
// so probing a different end under the same start reuses all shared
// ancestors. The stand-in placeholder for start is cached under the
// identity pair (start, start), so callers can also retrieve the start
// layer's own view without special-casing.
//
// A failed build leaves the cache exactly as it was: entries are staged and
// committed only when the whole walk succeeds, so a corrected retry rebuilds
// from scratch with no poisoned entries. An end that is not reachable from
// start reports a not-found error, but the walk itself succeeded, so the
// entries built along the way are committed and reused by later queries.
func (n *Network) Subgraph(start, end string) (*Subgraph, error) {
	if !n.compiled {
		return nil, errors.New(errors.ErrCodeNotCompiled, "network %q is not compiled", n.name)
	}
	src, ok := n.byName[start]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownLayer, "unknown layer %q", start)
	}
	if _, ok := n.byName[end]; !ok {
		return nil, errors.New(errors.ErrCodeUnknownLayer, "unknown layer %q", end)
	}

	// The absent -> building -> cached transition is a critical section:
	// two goroutines racing on the same key must not both build.
	n.subMu.Lock()
	defer n.subMu.Unlock()

	if sg, ok := n.subs[pairKey{start, end}]; ok {
		return sg, nil
	}

	staging, err := n.buildSubgraphs(src)
	if err != nil {
		return nil, err
	}

	// The walk succeeded, so everything reachable from start is committed
	// even when end turns out not to be among it. An unreachable end is a
	// property of the query, not of the built entries; later queries under
	// the same start reuse them.
	for k, v := range staging {
		n.subs[k] = v
	}
	if sg, ok := n.subs[pairKey{start, end}]; ok {
		return sg, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "layer %q is not reachable from %q", end, start)
}

// buildSubgraphs walks the layers reachable from src and stages a compiled
// sub-graph for every (src, node) pair not already cached. The caller holds
// subMu and commits the staging map on success.
func (n *Network) buildSubgraphs(src *Layer) (map[pairKey]*Subgraph, error) {
	eng := n.eng
	staging := make(map[pairKey]*Subgraph)

	lookup := func(name string) (*Subgraph, bool) {
		if sg, ok := staging[pairKey{src.name, name}]; ok {
			return sg, true
		}
		sg, ok := n.subs[pairKey{src.name, name}]
		return sg, ok
	}

	// Stand-in input shaped like the start layer, so the caller can inject
	// an arbitrary activation there without touching anything upstream of
	// it. An earlier build against the same start already placed one; reuse
	// it so every cached pair shares a single input.
	var standIn engine.Handle
	if cached, ok := lookup(src.name); ok {
		standIn = cached.Output
	} else {
		ph, err := eng.Placeholder(src.name, src.shape)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "stand-in for %q", src.name)
		}
		identity, err := eng.Compile([]engine.Handle{ph}, []engine.Handle{ph})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "identity model for %q", src.name)
		}
		standIn = ph
		staging[pairKey{src.name, src.name}] = &Subgraph{
			Start:  src.name,
			End:    src.name,
			Output: ph,
			Model:  identity,
		}
	}

	for _, l := range TopoSort(src.outgoing) {
		if _, ok := lookup(l.name); ok {
			continue
		}
		in, err := n.composeIncoming(eng, l, func(parent *Layer) (engine.Handle, bool) {
			if sg, ok := lookup(parent.name); ok {
				return sg.Output, true
			}
			return nil, false
		})
		if err != nil {
			return nil, err
		}
		out, err := eng.Apply(in, l.activation, l.shape)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "layer %q", l.name)
		}
		model, err := eng.Compile([]engine.Handle{standIn}, []engine.Handle{out})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "model %q -> %q", src.name, l.name)
		}
		staging[pairKey{src.name, l.name}] = &Subgraph{
			Start:  src.name,
			End:    l.name,
			Output: out,
			Model:  model,
		}
	}
	return staging, nil
}

// SubgraphCacheSize returns the number of cached (start, end) pairs.
func (n *Network) SubgraphCacheSize() int {
	n.subMu.Lock()
	defer n.subMu.Unlock()
	return len(n.subs)
}
