package network

// TopoSort linearizes every layer reachable from the start set via outgoing
// edges, ancestors before descendants within the reachable subset. Each
// reachable layer appears exactly once; a start layer with no outgoing edges
// yields just itself.
//
// The traversal is a depth-first post-order, reversed. Children are visited
// in static adjacency order (the order of Connect calls), which makes the
// result deterministic for identical construction order. Reproducible bank
// ordering and cache keys depend on this. The visited set lives on the
// call stack, not on the layers, so concurrent read-only sorts over the
// same network cannot interfere.
func TopoSort(starts []*Layer) []*Layer {
	visited := make(map[string]bool)
	var stack []*Layer

	var visit func(l *Layer)
	visit = func(l *Layer) {
		visited[l.name] = true
		for _, next := range l.outgoing {
			if !visited[next.name] {
				visit(next)
			}
		}
		stack = append(stack, l)
	}

	for _, l := range starts {
		if !visited[l.name] {
			visit(l)
		}
	}

	// Post-order gives descendants first; reverse for inputs-to-outputs.
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}

// Sorted returns a full topological order over all layers, starting the
// traversal from every layer in insertion order.
func (n *Network) Sorted() []*Layer {
	return TopoSort(n.layers)
}
