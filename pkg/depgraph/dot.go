package depgraph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/depscope/depscope/pkg/deps"
)

// ToDOT converts the graph to Graphviz DOT format. Each distinct
// (package, version) key becomes one node; duplicate entries under a key
// are annotated with an entry count. Child references are rendered as
// edges; references to keys absent from the index are drawn as dashed
// placeholder nodes.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, k := range g.order {
		group := g.byKey[k]
		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(k, group))}
		if group[0].Transitivity == deps.TransitivityDirect {
			attrs = append(attrs, "fillcolor=lightblue")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", k.String(), strings.Join(attrs, ", "))
	}

	placeholders := make(map[deps.DependencyKey]bool)
	buf.WriteString("\n")
	for _, k := range g.order {
		for _, d := range g.byKey[k] {
			for _, child := range d.Children {
				if _, ok := g.byKey[child]; !ok && !placeholders[child] {
					placeholders[child] = true
					fmt.Fprintf(&buf, "  %q [style=\"rounded,dashed\", fillcolor=white];\n", child.String())
				}
				fmt.Fprintf(&buf, "  %q -> %q;\n", k.String(), child.String())
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(k deps.DependencyKey, group []deps.FoundDependency) string {
	if len(group) > 1 {
		return fmt.Sprintf("%s\n(%d entries)", k.String(), len(group))
	}
	return k.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
