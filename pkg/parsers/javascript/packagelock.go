// Package javascript parses npm-family lockfiles: package-lock.json
// (v2/v3) and pnpm-lock.yaml.
package javascript

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/depscope/depscope/pkg/deps"
)

// packageLockFile is the subset of package-lock.json v2/v3 we read. The
// packages map is keyed by install path ("" for the root project,
// "node_modules/foo", "node_modules/a/node_modules/b" when nested).
type packageLockFile struct {
	LockfileVersion int                       `json:"lockfileVersion"`
	Packages        map[string]packageLockPkg `json:"packages"`
}

type packageLockPkg struct {
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
	Dev          bool              `json:"dev"`
}

// ParsePackageLock parses a package-lock.json v2/v3 file. Entries reached
// directly from the root project's dependency maps are direct, the rest
// transitive. Children keys are resolved through npm's nesting rules: the
// closest enclosing node_modules directory that holds the named package
// wins.
func ParsePackageLock(lockfilePath, manifestPath string) ([]deps.FoundDependency, []deps.ParseError) {
	data, err := os.ReadFile(lockfilePath)
	if err != nil {
		return nil, []deps.ParseError{{Path: lockfilePath, Parser: "package-lock", Reason: err.Error()}}
	}

	var lock packageLockFile
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, []deps.ParseError{{Path: lockfilePath, Parser: "package-lock", Reason: err.Error()}}
	}
	if lock.Packages == nil {
		return nil, []deps.ParseError{{
			Path:   lockfilePath,
			Parser: "package-lock",
			Reason: "no packages map; lockfileVersion 1 is not supported",
		}}
	}

	directNames := make(map[string]bool)
	if root, ok := lock.Packages[""]; ok {
		for name := range root.Dependencies {
			directNames[name] = true
		}
	}

	// deterministic output order
	paths := make([]string, 0, len(lock.Packages))
	for path := range lock.Packages {
		if path != "" && strings.Contains(path, "node_modules/") {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	var found []deps.FoundDependency
	var parseErrs []deps.ParseError
	for _, path := range paths {
		pkg := lock.Packages[path]
		name := installedName(path)
		if name == "" || pkg.Version == "" {
			parseErrs = append(parseErrs, deps.ParseError{
				Path:   lockfilePath,
				Parser: "package-lock",
				Reason: "package entry missing name or version",
				Text:   path,
			})
			continue
		}

		transitivity := deps.TransitivityTransitive
		if directNames[name] && !strings.Contains(strings.TrimPrefix(path, "node_modules/"), "node_modules/") {
			transitivity = deps.TransitivityDirect
		}

		found = append(found, deps.FoundDependency{
			Package:      name,
			Version:      pkg.Version,
			Ecosystem:    deps.EcosystemNpm,
			Transitivity: transitivity,
			Children:     childKeys(lock.Packages, path, pkg),
			LockfilePath: lockfilePath,
			ManifestPath: manifestPath,
		})
	}

	return found, parseErrs
}

// installedName extracts the package name from an install path: the part
// after the last node_modules segment.
func installedName(path string) string {
	i := strings.LastIndex(path, "node_modules/")
	if i < 0 {
		return ""
	}
	return path[i+len("node_modules/"):]
}

// childKeys resolves the dependency names of one installed package to the
// (package, version) keys of the installations that would be loaded,
// walking from the deepest enclosing node_modules outward.
func childKeys(packages map[string]packageLockPkg, path string, pkg packageLockPkg) []deps.DependencyKey {
	if len(pkg.Dependencies) == 0 {
		return nil
	}

	names := make([]string, 0, len(pkg.Dependencies))
	for name := range pkg.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var keys []deps.DependencyKey
	for _, name := range names {
		if installed, ok := resolveInstall(packages, path, name); ok {
			keys = append(keys, deps.DependencyKey{Package: name, Version: installed})
		}
	}
	return keys
}

// resolveInstall finds the version of name visible from the package
// installed at base.
func resolveInstall(packages map[string]packageLockPkg, base, name string) (string, bool) {
	for {
		if pkg, ok := packages[base+"/node_modules/"+name]; ok {
			return pkg.Version, true
		}
		i := strings.LastIndex(base, "/node_modules/")
		if i < 0 {
			break
		}
		base = base[:i]
	}
	if pkg, ok := packages["node_modules/"+name]; ok {
		return pkg.Version, true
	}
	return "", false
}
