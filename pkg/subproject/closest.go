package subproject

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/depscope/depscope/pkg/deps"
)

// ClosestIndex returns the index into candidates of the closest subproject
// owning path for the given ecosystem, or -1 when none qualifies. A
// candidate qualifies when its root directory equals the file's directory
// or an ancestor of it and its ecosystem matches. Candidates are considered
// most specific first (deepest root directory); ties keep input order.
//
// The function is pure. Callers that look up many files against the same
// candidate set may memoize results per (path, ecosystem).
func ClosestIndex(path string, eco deps.Ecosystem, candidates []Subproject) int {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rootDepth(candidates[order[a]].RootDir) > rootDepth(candidates[order[b]].RootDir)
	})

	for _, i := range order {
		c := candidates[i]
		if c.Ecosystem == eco && isAncestorDir(c.RootDir, path) {
			return i
		}
	}
	return -1
}

// FindClosest is ClosestIndex returning the candidate itself.
func FindClosest(path string, eco deps.Ecosystem, candidates []Subproject) *Subproject {
	i := ClosestIndex(path, eco, candidates)
	if i < 0 {
		return nil
	}
	return &candidates[i]
}

// rootDepth counts path components so deeper roots sort first.
func rootDepth(dir string) int {
	clean := filepath.Clean(dir)
	if clean == string(filepath.Separator) || clean == "." {
		return 0
	}
	return strings.Count(clean, string(filepath.Separator)) + 1
}

// isAncestorDir reports whether root equals the directory holding path or
// any ancestor of that directory.
func isAncestorDir(root, path string) bool {
	root = filepath.Clean(root)
	dir := filepath.Dir(filepath.Clean(path))
	for {
		if dir == root {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}
