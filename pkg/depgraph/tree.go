package depgraph

import (
	"fmt"
	"io"
	"strings"

	"github.com/depscope/depscope/pkg/deps"
)

// WriteTree renders the graph rooted at its direct dependencies with
// indentation, expanding each entry's children keys. When several entries
// share a key, the first entry is used; no further disambiguation is
// attempted. A key that was already expanded once is rendered as a leaf on
// later encounters, which also guards against cycles. Entries of
// transitive or unknown transitivity not reached by the expansion are
// listed in separate buckets at the end.
//
// A children reference whose key is absent from the index is a malformed
// graph, not a crash: the reference is rendered inline and collected into
// the returned slice so callers can report it.
func (g *Graph) WriteTree(w io.Writer) []deps.DependencyKey {
	var missing []deps.DependencyKey
	expanded := make(map[deps.DependencyKey]bool)

	var walk func(d deps.FoundDependency, indent int)
	walk = func(d deps.FoundDependency, indent int) {
		pad := spaces(indent * 2)
		fmt.Fprintf(w, "%s- %s@%s\n", pad, d.Package, d.Version)

		k := d.Key()
		if expanded[k] {
			fmt.Fprintf(w, "%s  (already shown)\n", pad)
			return
		}
		expanded[k] = true

		for _, child := range d.Children {
			group := g.byKey[child]
			if len(group) == 0 {
				fmt.Fprintf(w, "%s  - %s (not in graph)\n", pad, child)
				missing = append(missing, child)
				continue
			}
			walk(group[0], indent+1)
		}
	}

	fmt.Fprintln(w, "direct dependencies:")
	for d := range g.All() {
		if d.Transitivity == deps.TransitivityDirect {
			walk(d, 1)
		}
	}

	g.writeBucket(w, "other transitive:", deps.TransitivityTransitive, expanded)
	g.writeBucket(w, "other unknown transitivity:", deps.TransitivityUnknown, expanded)

	return missing
}

// writeBucket lists entries of the given transitivity whose key was not
// reached by the rooted expansion.
func (g *Graph) writeBucket(w io.Writer, header string, t deps.Transitivity, expanded map[deps.DependencyKey]bool) {
	fmt.Fprintln(w, header)
	for _, k := range g.order {
		if expanded[k] {
			continue
		}
		for _, d := range g.byKey[k] {
			if d.Transitivity == t {
				fmt.Fprintf(w, "  - %s@%s\n", d.Package, d.Version)
			}
		}
	}
}

func spaces(n int) string {
	return strings.Repeat(" ", n)
}
