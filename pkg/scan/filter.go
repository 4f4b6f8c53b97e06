package scan

import (
	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/subproject"
)

// Rule is the slice of a scan rule the orchestrator cares about: which
// languages it applies to and which package ecosystems it queries.
type Rule struct {
	ID         string
	Languages  []string
	Ecosystems []deps.Ecosystem
}

// CodeTargets returns the code files of one language that the scan will
// analyze. On diff scans this is the changed-file set filtered down to the
// language's extensions.
type CodeTargets func(language string) []string

// FilterChanged splits subprojects into the ones relevant to a diff scan
// and the ones to skip. A subproject is relevant when one of its own source
// files changed, or when it is the closest subproject of a code target for
// some rule's (language, ecosystem) pair. When every subproject is already
// relevant through its own files, the closest-subproject pass is skipped
// entirely.
func FilterChanged(subs []subproject.Subproject, changed []string, rules []Rule, targets CodeTargets) ([]subproject.Subproject, []subproject.Unresolved) {
	changedSet := make(map[string]bool, len(changed))
	for _, p := range changed {
		changedSet[p] = true
	}

	relevant := make(map[int]bool, len(subs))
	for i, sub := range subs {
		for _, p := range sub.Source.SourceFiles() {
			if changedSet[p] {
				relevant[i] = true
				break
			}
		}
	}

	if len(relevant) < len(subs) && targets != nil {
		markClosest(subs, rules, targets, relevant)
	}

	var keep []subproject.Subproject
	var skipped []subproject.Unresolved
	for i, sub := range subs {
		if relevant[i] {
			keep = append(keep, sub)
		} else {
			skipped = append(skipped, subproject.NewUnresolved(sub, subproject.ReasonSkipped, nil))
		}
	}
	return keep, skipped
}

// markClosest marks, for every rule's (language, ecosystem) pair and every
// code target of that language, the closest subproject owning the target.
func markClosest(subs []subproject.Subproject, rules []Rule, targets CodeTargets, relevant map[int]bool) {
	for _, rule := range rules {
		for _, lang := range rule.Languages {
			for _, path := range targets(lang) {
				for _, eco := range rule.Ecosystems {
					if i := subproject.ClosestIndex(path, eco, subs); i >= 0 {
						relevant[i] = true
					}
				}
			}
		}
	}
}
