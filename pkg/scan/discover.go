package scan

import (
	"sort"

	"github.com/depscope/depscope/pkg/subproject"
)

// FindSubprojects partitions candidate files into subprojects using an
// ordered matcher list. Each matcher sees only the files no earlier
// matcher consumed, so the partition is disjoint and matcher priority is
// first-match-wins. Files no matcher claims belong to no subproject.
// Candidates are sorted before matching so the output order is
// deterministic regardless of discovery order.
func FindSubprojects(candidates []string, matchers []subproject.Matcher) []subproject.Subproject {
	remaining := make([]string, len(candidates))
	copy(remaining, candidates)
	sort.Strings(remaining)

	var subs []subproject.Subproject
	for _, m := range matchers {
		var matched, rest []string
		for _, p := range remaining {
			if m.Match(p) {
				matched = append(matched, p)
			} else {
				rest = append(rest, p)
			}
		}
		if len(matched) == 0 {
			continue
		}

		made, used := m.MakeSubprojects(matched)
		subs = append(subs, made...)

		usedSet := make(map[string]bool, len(used))
		for _, p := range used {
			usedSet[p] = true
		}
		for _, p := range matched {
			if !usedSet[p] {
				rest = append(rest, p)
			}
		}
		remaining = rest
	}
	return subs
}
