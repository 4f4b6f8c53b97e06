// Package rust parses Cargo.lock files into flat dependency lists.
package rust

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/depscope/depscope/pkg/deps"
)

// cargoLockFile is the subset of Cargo.lock we read. The dependencies of
// each package are strings of the form "name", "name version" or
// "name version (source)".
type cargoLockFile struct {
	Package []cargoLockPkg `toml:"package"`
}

type cargoLockPkg struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Dependencies []string `toml:"dependencies"`
}

// cargoManifest is the subset of Cargo.toml declaring direct dependencies.
type cargoManifest struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

// ParseCargoLock parses a Cargo.lock file. The Cargo.toml manifest, when
// given, supplies the direct dependency names. Children keys are resolved
// from each package's dependency strings; a bare name with several locked
// versions is ambiguous and skipped.
func ParseCargoLock(lockfilePath, manifestPath string) ([]deps.FoundDependency, []deps.ParseError) {
	data, err := os.ReadFile(lockfilePath)
	if err != nil {
		return nil, []deps.ParseError{{Path: lockfilePath, Parser: "cargo", Reason: err.Error()}}
	}

	var lock cargoLockFile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, []deps.ParseError{{Path: lockfilePath, Parser: "cargo", Reason: err.Error()}}
	}

	manifestNames := cargoManifestNames(manifestPath)

	// versions per name, for resolving bare dependency references
	versionsByName := make(map[string][]string)
	for _, pkg := range lock.Package {
		versionsByName[pkg.Name] = append(versionsByName[pkg.Name], pkg.Version)
	}

	var found []deps.FoundDependency
	var parseErrs []deps.ParseError
	for _, pkg := range lock.Package {
		if pkg.Name == "" || pkg.Version == "" {
			parseErrs = append(parseErrs, deps.ParseError{
				Path:   lockfilePath,
				Parser: "cargo",
				Reason: "package entry missing name or version",
			})
			continue
		}

		transitivity := deps.TransitivityUnknown
		if manifestNames != nil {
			if manifestNames[pkg.Name] {
				transitivity = deps.TransitivityDirect
			} else {
				transitivity = deps.TransitivityTransitive
			}
		}

		found = append(found, deps.FoundDependency{
			Package:      pkg.Name,
			Version:      pkg.Version,
			Ecosystem:    deps.EcosystemCargo,
			Transitivity: transitivity,
			Children:     cargoChildKeys(pkg.Dependencies, versionsByName),
			LockfilePath: lockfilePath,
			ManifestPath: manifestPath,
		})
	}

	return found, parseErrs
}

// cargoChildKeys resolves dependency strings to (package, version) keys.
func cargoChildKeys(dependencies []string, versionsByName map[string][]string) []deps.DependencyKey {
	var keys []deps.DependencyKey
	for _, dep := range dependencies {
		fields := strings.Fields(dep)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if len(fields) >= 2 {
			keys = append(keys, deps.DependencyKey{Package: name, Version: fields[1]})
			continue
		}
		if versions := versionsByName[name]; len(versions) == 1 {
			keys = append(keys, deps.DependencyKey{Package: name, Version: versions[0]})
		}
	}
	return keys
}

// cargoManifestNames reads the direct dependency names from Cargo.toml.
// Returns nil when no manifest is available.
func cargoManifestNames(manifestPath string) map[string]bool {
	if manifestPath == "" {
		return nil
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil
	}
	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil
	}

	names := make(map[string]bool)
	for name := range manifest.Dependencies {
		names[name] = true
	}
	for name := range manifest.DevDependencies {
		names[name] = true
	}
	for name := range manifest.BuildDependencies {
		names[name] = true
	}
	return names
}
