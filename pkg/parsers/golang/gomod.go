// Package golang parses go.mod files into flat dependency lists.
package golang

import (
	"bufio"
	"os"
	"strings"

	"github.com/depscope/depscope/pkg/deps"
)

// ParseGoMod parses a go.mod file. Entries in require blocks marked
// `// indirect` are transitive, the rest direct. The go.mod file is both
// declaration and pin, so no separate manifest is involved; manifestPath
// is accepted only to satisfy the parser contract.
func ParseGoMod(lockfilePath, manifestPath string) ([]deps.FoundDependency, []deps.ParseError) {
	f, err := os.Open(lockfilePath)
	if err != nil {
		return nil, []deps.ParseError{{Path: lockfilePath, Parser: "gomod", Reason: err.Error()}}
	}
	defer f.Close()

	var found []deps.FoundDependency
	var parseErrs []deps.ParseError

	inRequire := false
	lineno := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "" || strings.HasPrefix(line, "//"):
			continue
		case inRequire && line == ")":
			inRequire = false
			continue
		case strings.HasPrefix(line, "require ("):
			inRequire = true
			continue
		}

		var spec string
		if inRequire {
			spec = line
		} else if rest, ok := strings.CutPrefix(line, "require "); ok {
			spec = rest
		} else {
			continue
		}

		dep, ok := parseRequireLine(spec, lockfilePath)
		if !ok {
			parseErrs = append(parseErrs, deps.ParseError{
				Path:   lockfilePath,
				Parser: "gomod",
				Reason: "unparseable require entry",
				Line:   lineno,
				Text:   line,
			})
			continue
		}
		found = append(found, dep)
	}
	if err := scanner.Err(); err != nil {
		parseErrs = append(parseErrs, deps.ParseError{Path: lockfilePath, Parser: "gomod", Reason: err.Error()})
	}

	return found, parseErrs
}

// parseRequireLine parses one "module version [// indirect]" entry.
func parseRequireLine(spec, lockfilePath string) (deps.FoundDependency, bool) {
	indirect := false
	if i := strings.Index(spec, "//"); i >= 0 {
		indirect = strings.Contains(spec[i:], "indirect")
		spec = strings.TrimSpace(spec[:i])
	}

	fields := strings.Fields(spec)
	if len(fields) != 2 || !strings.HasPrefix(fields[1], "v") {
		return deps.FoundDependency{}, false
	}

	transitivity := deps.TransitivityDirect
	if indirect {
		transitivity = deps.TransitivityTransitive
	}
	return deps.FoundDependency{
		Package:      fields[0],
		Version:      fields[1],
		Ecosystem:    deps.EcosystemGomod,
		Transitivity: transitivity,
		LockfilePath: lockfilePath,
	}, true
}
