package javascript

import (
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/depscope/depscope/pkg/deps"
)

// pnpmLockFile is the subset of pnpm-lock.yaml we read, covering the v6
// and v9 layouts. In v6 the top-level dependency maps are used directly;
// in v9 they live under importers["."].
type pnpmLockFile struct {
	Importers map[string]pnpmImporter `yaml:"importers"`

	Dependencies    map[string]pnpmRef `yaml:"dependencies"`
	DevDependencies map[string]pnpmRef `yaml:"devDependencies"`

	Packages map[string]struct{} `yaml:"packages"`
}

type pnpmImporter struct {
	Dependencies    map[string]pnpmRef `yaml:"dependencies"`
	DevDependencies map[string]pnpmRef `yaml:"devDependencies"`
}

// pnpmRef tolerates both the v6 plain-string form and the v9 object form
// of a dependency reference.
type pnpmRef struct {
	Version string
}

func (r *pnpmRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Version = node.Value
		return nil
	}
	var obj struct {
		Version string `yaml:"version"`
	}
	if err := node.Decode(&obj); err != nil {
		return err
	}
	r.Version = obj.Version
	return nil
}

// ParsePnpmLock parses a pnpm-lock.yaml file. Every key of the packages
// map becomes one dependency; entries named in the root importer's
// dependency maps are direct, the rest transitive.
func ParsePnpmLock(lockfilePath, manifestPath string) ([]deps.FoundDependency, []deps.ParseError) {
	data, err := os.ReadFile(lockfilePath)
	if err != nil {
		return nil, []deps.ParseError{{Path: lockfilePath, Parser: "pnpm", Reason: err.Error()}}
	}

	var lock pnpmLockFile
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, []deps.ParseError{{Path: lockfilePath, Parser: "pnpm", Reason: err.Error()}}
	}

	directNames := make(map[string]bool)
	collect := func(m map[string]pnpmRef) {
		for name := range m {
			directNames[name] = true
		}
	}
	collect(lock.Dependencies)
	collect(lock.DevDependencies)
	if root, ok := lock.Importers["."]; ok {
		collect(root.Dependencies)
		collect(root.DevDependencies)
	}

	keys := make([]string, 0, len(lock.Packages))
	for key := range lock.Packages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var found []deps.FoundDependency
	var parseErrs []deps.ParseError
	for _, key := range keys {
		name, version, ok := splitPnpmKey(key)
		if !ok {
			parseErrs = append(parseErrs, deps.ParseError{
				Path:   lockfilePath,
				Parser: "pnpm",
				Reason: "unparseable package key",
				Text:   key,
			})
			continue
		}

		transitivity := deps.TransitivityTransitive
		if directNames[name] {
			transitivity = deps.TransitivityDirect
		}

		found = append(found, deps.FoundDependency{
			Package:      name,
			Version:      version,
			Ecosystem:    deps.EcosystemNpm,
			Transitivity: transitivity,
			LockfilePath: lockfilePath,
			ManifestPath: manifestPath,
		})
	}

	return found, parseErrs
}

// splitPnpmKey splits a packages key like "/foo@1.0.0", "foo@1.0.0" or
// "@scope/foo@1.0.0(peer@2.0.0)" into name and version.
func splitPnpmKey(key string) (name, version string, ok bool) {
	key = strings.TrimPrefix(key, "/")
	// drop the peer-dependency suffix
	if i := strings.IndexByte(key, '('); i >= 0 {
		key = key[:i]
	}
	// the name may itself start with @scope/, so split on the last @
	i := strings.LastIndexByte(key, '@')
	if i <= 0 {
		return "", "", false
	}
	name, version = key[:i], key[i+1:]
	if name == "" || version == "" {
		return "", "", false
	}
	return name, version, true
}
