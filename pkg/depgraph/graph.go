// Package depgraph provides the immutable dependency graph built from a
// flat list of resolved dependencies.
//
// The graph is an index keyed by (package, version). The same key may map
// to several entries when a package appears in multiple lockfile locations,
// so the index stores a list per key rather than a single value. Child
// relationships are weak references: each entry carries lookup keys into
// the index, not owned links, which keeps duplicate keys and repeated
// subtrees representable without reference cycles.
package depgraph

import (
	"iter"

	"github.com/depscope/depscope/pkg/deps"
)

// Graph indexes resolved dependencies by (package, version). It is built
// once with [New] and immutable thereafter.
type Graph struct {
	order []deps.DependencyKey
	byKey map[deps.DependencyKey][]deps.FoundDependency
}

// New builds a graph from a flat dependency list. Entries are grouped by
// key; insertion order is preserved both across keys and within a key's
// entry list, so iteration order is deterministic.
func New(found []deps.FoundDependency) *Graph {
	g := &Graph{
		byKey: make(map[deps.DependencyKey][]deps.FoundDependency, len(found)),
	}
	for _, d := range found {
		k := d.Key()
		if _, ok := g.byKey[k]; !ok {
			g.order = append(g.order, k)
		}
		g.byKey[k] = append(g.byKey[k], d)
	}
	return g
}

// All returns a restartable sequence over every entry across all keys,
// including duplicates that share a key.
func (g *Graph) All() iter.Seq[deps.FoundDependency] {
	return func(yield func(deps.FoundDependency) bool) {
		for _, k := range g.order {
			for _, d := range g.byKey[k] {
				if !yield(d) {
					return
				}
			}
		}
	}
}

// Count returns the total number of entries, duplicates included.
func (g *Graph) Count() int {
	n := 0
	for _, k := range g.order {
		n += len(g.byKey[k])
	}
	return n
}

// Lookup returns all entries stored under key, in insertion order.
// Returns nil when the key is absent.
func (g *Graph) Lookup(key deps.DependencyKey) []deps.FoundDependency {
	return g.byKey[key]
}

// ByOrigin partitions entries into a map from origin lockfile path to the
// entries found in that lockfile, plus a separate list of entries with no
// recorded origin.
func (g *Graph) ByOrigin() (map[string][]deps.FoundDependency, []deps.FoundDependency) {
	byPath := make(map[string][]deps.FoundDependency)
	var unknown []deps.FoundDependency
	for d := range g.All() {
		if d.LockfilePath != "" {
			byPath[d.LockfilePath] = append(byPath[d.LockfilePath], d)
		} else {
			unknown = append(unknown, d)
		}
	}
	return byPath, unknown
}
