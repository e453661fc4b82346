package network

// ResolveBanks orders the input and output layers into positional banks.
//
// A layer joins the input bank iff it has no incoming edges and the output
// bank iff it has no outgoing edges; a degenerate single-layer network
// appears in both. Order within each bank follows the layer sequence
// (insertion order), not edge-discovery order, so a name-keyed value map
// supplied by a caller projects to the same positional sequence on every
// run.
func (n *Network) ResolveBanks() (inputs, outputs []string) {
	for _, l := range n.layers {
		if len(l.incoming) == 0 {
			inputs = append(inputs, l.name)
		}
		if len(l.outgoing) == 0 {
			outputs = append(outputs, l.name)
		}
	}
	return inputs, outputs
}

// resolveInputNames computes each layer's resolved input-name set from the
// topology alone. An input layer's set is itself. A single-parent layer
// inherits the parent's set unchanged. A merge point concatenates all
// ancestors' sets flattened, without deduplication, mirroring how the
// compiled representation concatenates ancestor outputs before applying the
// layer's own transformation.
func (n *Network) resolveInputNames() map[string][]string {
	names := make(map[string][]string, len(n.layers))
	for _, l := range n.Sorted() {
		switch {
		case len(l.incoming) == 0:
			names[l.name] = []string{l.name}
		case len(l.incoming) == 1:
			names[l.name] = names[l.incoming[0].name]
		default:
			var merged []string
			for _, parent := range l.incoming {
				merged = append(merged, names[parent.name]...)
			}
			names[l.name] = merged
		}
	}
	return names
}

// PosMap maps each name in the slice to its index, for fast positional
// lookups when projecting name-keyed values onto a bank order.
func PosMap(names []string) map[string]int {
	m := make(map[string]int, len(names))
	for i, name := range names {
		m[name] = i
	}
	return m
}
