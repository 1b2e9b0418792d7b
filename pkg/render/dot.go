package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/intentflow/intentflow/pkg/cdg"
	"github.com/intentflow/intentflow/pkg/layout"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes type, status, and confidence in node labels.
	// When false, only the statement is shown.
	Detailed bool
}

// ToDOT converts a graph plus its computed positions to Graphviz DOT.
// Positions are emitted as fixed neato coordinates so the rendered diagram
// matches the editor layout exactly; the y axis is flipped because diagram
// coordinates grow downward and Graphviz coordinates grow upward.
//
// The resulting DOT string can be rendered with [SVG] or [PNG].
func ToDOT(g cdg.Graph, pos map[string]layout.Point, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph cdg {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := nodeAttrs(n, opts.Detailed)
		if p, ok := pos[n.ID]; ok {
			attrs = append(attrs, fmt.Sprintf("pos=\"%.0f,%.0f!\"", p.X, -p.Y))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeFills maps node types onto fill colors; the palette mirrors the
// editor's node chips.
var nodeFills = map[string]string{
	cdg.TypeGoal:       "#fde68a",
	cdg.TypeConstraint: "#fecaca",
	cdg.TypePreference: "#bfdbfe",
	cdg.TypeBelief:     "#ddd6fe",
	cdg.TypeFact:       "#bbf7d0",
	cdg.TypeQuestion:   "#e5e7eb",
}

func nodeAttrs(n cdg.Node, detailed bool) []string {
	label := n.Statement
	if label == "" {
		label = n.ID
	}
	if detailed {
		meta := fmt.Sprintf("%s/%s %.2f", n.Type, n.Status, n.Confidence)
		label += "\n" + meta
	}

	fill, ok := nodeFills[n.Type]
	if !ok {
		fill = "white"
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", fill),
	}
	if n.Locked {
		attrs = append(attrs, "penwidth=2")
	}
	if n.Status == cdg.StatusRejected {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fontcolor=gray40")
	}
	return attrs
}

func edgeAttrs(e cdg.Edge) []string {
	attrs := []string{fmt.Sprintf("penwidth=%.1f", 0.8+1.6*e.Confidence)}
	switch e.Type {
	case cdg.EdgeConstraint:
		attrs = append(attrs, "color=\"#b91c1c\"")
	case cdg.EdgeDetermine:
		attrs = append(attrs, "color=\"#1d4ed8\"")
	case cdg.EdgeConflictsWith:
		attrs = append(attrs, "color=\"#b91c1c\"", "style=dashed", "dir=both")
	default:
		attrs = append(attrs, "color=\"#6b7280\"")
	}
	return attrs
}

// Legend returns the node color legend in a stable order, for callers that
// print one next to the diagram.
func Legend() []string {
	types := make([]string, 0, len(nodeFills))
	for t := range nodeFills {
		types = append(types, t)
	}
	sort.Strings(types)
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = fmt.Sprintf("%s %s", t, nodeFills[t])
	}
	return out
}
