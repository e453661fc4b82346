package layout

import (
	"bytes"
	"fmt"
	"strings"
)

// Options configures diagram rendering.
type Options struct {
	// Direction is the Graphviz rankdir (TB or LR). Defaults to TB.
	Direction string

	// Detailed includes shape, activation, and level in node labels.
	// When false, only the layer name is shown.
	Detailed bool
}

// ToDOT converts a layout to Graphviz DOT format. Each level row is pinned
// with a rank=same group so the drawing reproduces the assigned levels, and
// nodes are colored by kind. The resulting DOT string can be rendered using
// [RenderSVG] or [RenderPNG].
func ToDOT(l Layout, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, row := range l.Rows {
		buf.WriteString("  { rank=same;")
		for _, name := range row {
			fmt.Fprintf(&buf, " %q;", name)
		}
		buf.WriteString(" }\n")
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n Node, detailed bool) string {
	if !detailed {
		return n.Name
	}

	parts := []string{fmt.Sprintf("level: %d", n.Level)}
	if len(n.Shape) > 0 {
		dims := make([]string, len(n.Shape))
		for i, d := range n.Shape {
			if d == 0 {
				dims[i] = "?"
			} else {
				dims[i] = fmt.Sprint(d)
			}
		}
		parts = append(parts, "shape: ("+strings.Join(dims, ", ")+")")
	}
	if n.Activation != "" {
		parts = append(parts, "activation: "+n.Activation)
	}

	return n.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case "input":
		attrs = append(attrs, "fillcolor=lightblue")
	case "output":
		attrs = append(attrs, "fillcolor=lightgoldenrod")
	case "unconnected":
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}
