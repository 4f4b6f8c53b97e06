package subproject

import (
	"path/filepath"

	"github.com/depscope/depscope/pkg/deps"
)

// Matcher builds subprojects from a set of candidate dependency source
// files. MakeSubprojects may use only some of the candidates; it returns
// the subprojects it built and the paths it consumed. A matcher must not
// consume a path it did not place into some returned subproject's source.
type Matcher interface {
	// Match reports whether the path has a relevant filename for this
	// matcher.
	Match(path string) bool

	// MakeSubprojects builds as many subprojects as possible from the
	// candidates, which are presented in a deterministic order.
	MakeSubprojects(candidates []string) ([]Subproject, []string)
}

// ExactLockfileManifestMatcher pairs a lockfile with an exact filename to a
// sibling manifest with an exact filename. A subproject is created for
// every lockfile whether or not its manifest is present. ManifestName may
// be empty for lockfiles that have no separate manifest. When
// MakeManifestOnly is set, a manifest with no sibling lockfile also becomes
// a subproject of its own.
type ExactLockfileManifestMatcher struct {
	LockfileName string
	ManifestName string

	LockfileKind deps.LockfileKind
	ManifestKind deps.ManifestKind
	Ecosystem    deps.Ecosystem

	MakeManifestOnly bool
}

func (m ExactLockfileManifestMatcher) Match(path string) bool {
	name := filepath.Base(path)
	return name == m.LockfileName || (m.ManifestName != "" && name == m.ManifestName)
}

func (m ExactLockfileManifestMatcher) MakeSubprojects(candidates []string) ([]Subproject, []string) {
	return makePairedSubprojects(pairedConfig{
		isLockfile: func(p string) bool { return filepath.Base(p) == m.LockfileName },
		isManifest: func(p string) bool { return m.ManifestName != "" && filepath.Base(p) == m.ManifestName },
		manifestFor: func(lockfile string, candidates map[string]bool) string {
			if m.ManifestName == "" {
				return ""
			}
			want := filepath.Join(filepath.Dir(lockfile), m.ManifestName)
			if candidates[want] {
				return want
			}
			return ""
		},
		lockfileKind:     m.LockfileKind,
		manifestKind:     m.ManifestKind,
		ecosystem:        m.Ecosystem,
		makeManifestOnly: m.MakeManifestOnly,
	}, candidates)
}

// PatternManifestStaticLockfileMatcher pairs a lockfile with an exact
// filename to a manifest whose filename matches a glob pattern, for
// ecosystems where the manifest name varies per project (nuget *.csproj).
// The manifest is required to sit in the same directory as the lockfile.
type PatternManifestStaticLockfileMatcher struct {
	ManifestPattern string
	LockfileName    string

	LockfileKind deps.LockfileKind
	ManifestKind deps.ManifestKind
	Ecosystem    deps.Ecosystem

	MakeManifestOnly bool
}

func (m PatternManifestStaticLockfileMatcher) matchManifest(path string) bool {
	ok, err := filepath.Match(m.ManifestPattern, filepath.Base(path))
	return err == nil && ok
}

func (m PatternManifestStaticLockfileMatcher) Match(path string) bool {
	return filepath.Base(path) == m.LockfileName || m.matchManifest(path)
}

func (m PatternManifestStaticLockfileMatcher) MakeSubprojects(candidates []string) ([]Subproject, []string) {
	return makePairedSubprojects(pairedConfig{
		isLockfile: func(p string) bool { return filepath.Base(p) == m.LockfileName },
		isManifest: m.matchManifest,
		manifestFor: func(lockfile string, candidates map[string]bool) string {
			dir := filepath.Dir(lockfile)
			for p := range candidates {
				if m.matchManifest(p) && filepath.Dir(p) == dir {
					return p
				}
			}
			return ""
		},
		lockfileKind:     m.LockfileKind,
		manifestKind:     m.ManifestKind,
		ecosystem:        m.Ecosystem,
		makeManifestOnly: m.MakeManifestOnly,
	}, candidates)
}

// ExactManifestOnlyMatcher creates a manifest-only subproject for every
// file with an exact name. Such matchers run after the paired matchers so
// a manifest already claimed by a lockfile pairing is never double-counted.
type ExactManifestOnlyMatcher struct {
	ManifestName string
	ManifestKind deps.ManifestKind
	Ecosystem    deps.Ecosystem
}

func (m ExactManifestOnlyMatcher) Match(path string) bool {
	return filepath.Base(path) == m.ManifestName
}

func (m ExactManifestOnlyMatcher) MakeSubprojects(candidates []string) ([]Subproject, []string) {
	var subs []Subproject
	var used []string
	for _, p := range candidates {
		if !m.Match(p) {
			continue
		}
		subs = append(subs, Subproject{
			RootDir:   filepath.Dir(p),
			Source:    deps.ManifestOnly{Manifest: deps.Manifest{Kind: m.ManifestKind, Path: p}},
			Ecosystem: m.Ecosystem,
		})
		used = append(used, p)
	}
	return subs, used
}

type pairedConfig struct {
	isLockfile  func(string) bool
	isManifest  func(string) bool
	manifestFor func(lockfile string, candidates map[string]bool) string

	lockfileKind     deps.LockfileKind
	manifestKind     deps.ManifestKind
	ecosystem        deps.Ecosystem
	makeManifestOnly bool
}

// makePairedSubprojects implements the shared lockfile-first pairing: one
// subproject per lockfile, with its manifest attached when found, then
// optionally one manifest-only subproject per manifest left unpaired.
// Candidate order is preserved so output order is deterministic.
func makePairedSubprojects(cfg pairedConfig, candidates []string) ([]Subproject, []string) {
	candidateSet := make(map[string]bool, len(candidates))
	for _, p := range candidates {
		candidateSet[p] = true
	}

	var subs []Subproject
	var used []string
	paired := make(map[string]bool)

	for _, p := range candidates {
		if !cfg.isLockfile(p) {
			continue
		}
		lockfile := deps.Lockfile{Kind: cfg.lockfileKind, Path: p}

		var src deps.Source
		root := filepath.Dir(p)
		if manifest := cfg.manifestFor(p, candidateSet); manifest != "" {
			paired[manifest] = true
			used = append(used, manifest)
			root = filepath.Dir(manifest)
			src = deps.ManifestLockfile{
				Manifest: deps.Manifest{Kind: cfg.manifestKind, Path: manifest},
				Lockfile: lockfile,
			}
		} else {
			src = deps.LockfileOnly{Lockfile: lockfile}
		}

		subs = append(subs, Subproject{RootDir: root, Source: src, Ecosystem: cfg.ecosystem})
		used = append(used, p)
	}

	if cfg.makeManifestOnly {
		for _, p := range candidates {
			if !cfg.isManifest(p) || paired[p] {
				continue
			}
			subs = append(subs, Subproject{
				RootDir:   filepath.Dir(p),
				Source:    deps.ManifestOnly{Manifest: deps.Manifest{Kind: cfg.manifestKind, Path: p}},
				Ecosystem: cfg.ecosystem,
			})
			used = append(used, p)
		}
	}

	return subs, used
}
