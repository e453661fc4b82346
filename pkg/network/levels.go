package network

import "sort"

// AssignLevels computes each layer's depth level: the longest path, in edge
// hops, from any input layer. Layers with no incoming edges sit at level 0.
//
// The pass is Kahn-style: start from the zero-in-degree layers and push each
// child to one past the deepest of its parents. Because parents always
// complete before children, a single forward sweep suffices with no
// fixpoint iteration. The graph is acyclic by construction, so the queue
// drains.
func (n *Network) AssignLevels() map[string]int {
	inDegree := make(map[string]int, len(n.layers))
	levels := make(map[string]int, len(n.layers))
	queue := make([]*Layer, 0, len(n.layers))

	for _, l := range n.layers {
		inDegree[l.name] = len(l.incoming)
		if len(l.incoming) == 0 {
			queue = append(queue, l)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range curr.outgoing {
			if level := levels[curr.name] + 1; level > levels[child.name] {
				levels[child.name] = level
			}
			inDegree[child.name]--
			if inDegree[child.name] == 0 {
				queue = append(queue, child)
			}
		}
	}

	return levels
}

// LevelOrdering groups layer names into rows by level, inputs first. Within
// a row, layers are ordered by their full sequence of resolved input-bank
// positions, compared lexicographically, with insertion order breaking exact
// ties. Layers sharing the same first input bank but diverging later still
// order deterministically, so the visual layout of the same network is
// stable across re-renders.
func (n *Network) LevelOrdering() [][]string {
	if len(n.layers) == 0 {
		return nil
	}

	levels := n.AssignLevels()
	inputs, _ := n.ResolveBanks()
	bankPos := PosMap(inputs)
	inputNames := n.resolveInputNames()

	ranks := make(map[string][]int, len(n.layers))
	for _, l := range n.layers {
		ranks[l.name] = bankRanks(l.name, inputNames, bankPos)
	}

	maxLevel := 0
	for _, level := range levels {
		if level > maxLevel {
			maxLevel = level
		}
	}

	rows := make([][]string, maxLevel+1)
	for _, l := range n.layers {
		rows[levels[l.name]] = append(rows[levels[l.name]], l.name)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return lessRanks(ranks[row[i]], ranks[row[j]])
		})
	}
	return rows
}

// bankRanks maps a layer's resolved input names to their input-bank
// positions, preserving the resolved order (flattened, not deduplicated).
func bankRanks(name string, inputNames map[string][]string, bankPos map[string]int) []int {
	var ranks []int
	for _, in := range inputNames[name] {
		if p, ok := bankPos[in]; ok {
			ranks = append(ranks, p)
		}
	}
	return ranks
}

// lessRanks compares two bank-position sequences lexicographically; a
// proper prefix sorts before its extension.
func lessRanks(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
