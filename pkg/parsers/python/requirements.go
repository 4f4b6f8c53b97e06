// Package python parses Python lockfile formats into flat dependency
// lists: pinned requirements files and poetry.lock.
package python

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/depscope/depscope/pkg/deps"
)

var requirementRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)(\[[^\]]*\])?==([^\s;#]+)`)

// ParseRequirements parses a pinned requirements file. Only `name==version`
// pins are recorded; unpinned constraints produce per-line parse errors
// since a lockfile is expected to be fully pinned. When a requirements.in
// manifest is given, packages listed there are direct and the rest
// transitive; without one, transitivity is unknown.
func ParseRequirements(lockfilePath, manifestPath string) ([]deps.FoundDependency, []deps.ParseError) {
	f, err := os.Open(lockfilePath)
	if err != nil {
		return nil, []deps.ParseError{{Path: lockfilePath, Parser: "requirements", Reason: err.Error()}}
	}
	defer f.Close()

	manifestNames := requirementsInNames(manifestPath)

	var found []deps.FoundDependency
	var parseErrs []deps.ParseError

	lineno := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		// URL and VCS requirements carry no parseable pin
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}

		m := requirementRE.FindStringSubmatch(line)
		if m == nil {
			parseErrs = append(parseErrs, deps.ParseError{
				Path:   lockfilePath,
				Parser: "requirements",
				Reason: "not a pinned requirement",
				Line:   lineno,
				Text:   line,
			})
			continue
		}

		name := NormalizeName(m[1])
		found = append(found, deps.FoundDependency{
			Package:      name,
			Version:      m[3],
			Ecosystem:    deps.EcosystemPypi,
			Transitivity: transitivityFor(manifestNames, name),
			LockfilePath: lockfilePath,
			ManifestPath: manifestPath,
		})
	}
	if err := scanner.Err(); err != nil {
		parseErrs = append(parseErrs, deps.ParseError{Path: lockfilePath, Parser: "requirements", Reason: err.Error()})
	}

	return found, parseErrs
}

// requirementsInNames reads the package names declared in a
// requirements.in manifest. Returns nil when there is no manifest, which
// callers must treat as "transitivity unknown" rather than "no directs".
func requirementsInNames(manifestPath string) map[string]bool {
	if manifestPath == "" {
		return nil
	}
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil
	}
	defer f.Close()

	names := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if m := nameRE.FindStringSubmatch(line); m != nil {
			names[NormalizeName(m[1])] = true
		}
	}
	return names
}

var nameRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)

// NormalizeName normalizes a Python package name per PEP 503: lowercase,
// with runs of `-`, `_` and `.` collapsed to a single `-`.
func NormalizeName(name string) string {
	return normalizeRE.ReplaceAllString(strings.ToLower(name), "-")
}

var normalizeRE = regexp.MustCompile(`[-_.]+`)

// transitivityFor classifies a package against the manifest's declared
// names. A nil map means no manifest was available.
func transitivityFor(manifestNames map[string]bool, name string) deps.Transitivity {
	if manifestNames == nil {
		return deps.TransitivityUnknown
	}
	if manifestNames[name] {
		return deps.TransitivityDirect
	}
	return deps.TransitivityTransitive
}
