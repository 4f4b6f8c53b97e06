package deps

// SourceFile is the stats projection of a single dependency source file.
type SourceFile struct {
	// Role is "manifest" or "lockfile".
	Role string `json:"role" bson:"role"`
	// Kind is the manifest or lockfile kind string.
	Kind string `json:"kind" bson:"kind"`
	Path string `json:"path" bson:"path"`
}

// Source describes where dependency facts for one subproject come from.
// It is a closed set of variants: [ManifestOnly], [LockfileOnly],
// [ManifestLockfile] and [MultiLockfile]. Callers dispatch on the concrete
// type with an exhaustive switch.
type Source interface {
	// DisplayPaths returns the paths used to identify this source in
	// reports. For manifest/lockfile pairs this is the lockfile path only.
	DisplayPaths() []string

	// SourceFiles returns every file that makes up this source, manifests
	// included. Used for diff-scan relevance checks.
	SourceFiles() []string

	// StatsFiles returns the per-file stats projection of this source.
	StatsFiles() []SourceFile

	// sealed restricts implementations to this package.
	sealed()
}

// ManifestOnly is a source backed by a single manifest with no lockfile.
// It can only be resolved dynamically.
type ManifestOnly struct {
	Manifest Manifest
}

func (s ManifestOnly) DisplayPaths() []string { return []string{s.Manifest.Path} }
func (s ManifestOnly) SourceFiles() []string  { return []string{s.Manifest.Path} }

func (s ManifestOnly) StatsFiles() []SourceFile {
	return []SourceFile{{Role: "manifest", Kind: string(s.Manifest.Kind), Path: s.Manifest.Path}}
}

func (ManifestOnly) sealed() {}

// LockfileOnly is a source backed by a single lockfile with no manifest.
type LockfileOnly struct {
	Lockfile Lockfile
}

func (s LockfileOnly) DisplayPaths() []string { return []string{s.Lockfile.Path} }
func (s LockfileOnly) SourceFiles() []string  { return []string{s.Lockfile.Path} }

func (s LockfileOnly) StatsFiles() []SourceFile {
	return []SourceFile{{Role: "lockfile", Kind: string(s.Lockfile.Kind), Path: s.Lockfile.Path}}
}

func (LockfileOnly) sealed() {}

// ManifestLockfile is a source backed by a manifest and its lockfile.
type ManifestLockfile struct {
	Manifest Manifest
	Lockfile Lockfile
}

// DisplayPaths reports the lockfile only; the manifest is implied by it.
func (s ManifestLockfile) DisplayPaths() []string { return []string{s.Lockfile.Path} }

func (s ManifestLockfile) SourceFiles() []string {
	return []string{s.Manifest.Path, s.Lockfile.Path}
}

func (s ManifestLockfile) StatsFiles() []SourceFile {
	return []SourceFile{
		{Role: "lockfile", Kind: string(s.Lockfile.Kind), Path: s.Lockfile.Path},
		{Role: "manifest", Kind: string(s.Manifest.Kind), Path: s.Manifest.Path},
	}
}

func (ManifestLockfile) sealed() {}

// MultiLockfile groups several lockfile-bearing sources that conceptually
// belong to one subproject (e.g. requirements.txt plus requirements-dev.txt).
// Children are always LockfileOnly or ManifestLockfile, never another
// MultiLockfile; use [NewMultiLockfile] to enforce this.
type MultiLockfile struct {
	Sources []Source
}

// NewMultiLockfile builds a MultiLockfile from lockfile-bearing children.
// Nested MultiLockfile children are flattened so the invariant that a
// multi-source never nests holds by construction.
func NewMultiLockfile(children ...Source) MultiLockfile {
	flat := make([]Source, 0, len(children))
	for _, c := range children {
		if m, ok := c.(MultiLockfile); ok {
			flat = append(flat, m.Sources...)
			continue
		}
		flat = append(flat, c)
	}
	return MultiLockfile{Sources: flat}
}

func (s MultiLockfile) DisplayPaths() []string {
	var paths []string
	for _, child := range s.Sources {
		paths = append(paths, child.DisplayPaths()...)
	}
	return paths
}

func (s MultiLockfile) SourceFiles() []string {
	var paths []string
	for _, child := range s.Sources {
		paths = append(paths, child.SourceFiles()...)
	}
	return paths
}

func (s MultiLockfile) StatsFiles() []SourceFile {
	var files []SourceFile
	for _, child := range s.Sources {
		files = append(files, child.StatsFiles()...)
	}
	return files
}

func (MultiLockfile) sealed() {}
