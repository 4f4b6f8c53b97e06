package python

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/depscope/depscope/pkg/deps"
)

// poetryLock is the subset of poetry.lock we read.
type poetryLock struct {
	Package []struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

// pyprojectFile is the subset of pyproject.toml declaring direct
// dependencies, covering both the poetry table and PEP 621 projects.
type pyprojectFile struct {
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

// ParsePoetryLock parses a poetry.lock file. The pyproject.toml manifest,
// when given, supplies the direct dependency names; lockfile entries not
// declared there are transitive.
func ParsePoetryLock(lockfilePath, manifestPath string) ([]deps.FoundDependency, []deps.ParseError) {
	data, err := os.ReadFile(lockfilePath)
	if err != nil {
		return nil, []deps.ParseError{{Path: lockfilePath, Parser: "poetry", Reason: err.Error()}}
	}

	var lock poetryLock
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, []deps.ParseError{{Path: lockfilePath, Parser: "poetry", Reason: err.Error()}}
	}

	manifestNames := pyprojectNames(manifestPath)

	var found []deps.FoundDependency
	var parseErrs []deps.ParseError
	for _, pkg := range lock.Package {
		if pkg.Name == "" || pkg.Version == "" {
			parseErrs = append(parseErrs, deps.ParseError{
				Path:   lockfilePath,
				Parser: "poetry",
				Reason: "package entry missing name or version",
			})
			continue
		}
		name := NormalizeName(pkg.Name)
		found = append(found, deps.FoundDependency{
			Package:      name,
			Version:      pkg.Version,
			Ecosystem:    deps.EcosystemPypi,
			Transitivity: transitivityFor(manifestNames, name),
			LockfilePath: lockfilePath,
			ManifestPath: manifestPath,
		})
	}

	return found, parseErrs
}

// pyprojectNames reads the direct dependency names from pyproject.toml.
func pyprojectNames(manifestPath string) map[string]bool {
	if manifestPath == "" {
		return nil
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil
	}
	var project pyprojectFile
	if err := toml.Unmarshal(data, &project); err != nil {
		return nil
	}

	names := make(map[string]bool)
	for name := range project.Tool.Poetry.Dependencies {
		if NormalizeName(name) == "python" {
			continue
		}
		names[NormalizeName(name)] = true
	}
	for _, spec := range project.Project.Dependencies {
		if m := nameRE.FindStringSubmatch(spec); m != nil {
			names[NormalizeName(m[1])] = true
		}
	}
	return names
}
