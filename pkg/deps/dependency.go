package deps

// Transitivity describes a dependency's relationship to the project root.
type Transitivity string

const (
	TransitivityDirect     Transitivity = "direct"
	TransitivityTransitive Transitivity = "transitive"
	TransitivityUnknown    Transitivity = "unknown"
)

// DependencyKey is the (package, version) pair used to index dependencies
// in a graph. Several FoundDependency entries may share one key when a
// package appears in multiple lockfile locations.
type DependencyKey struct {
	Package string `json:"package" bson:"package"`
	Version string `json:"version" bson:"version"`
}

func (k DependencyKey) String() string {
	return k.Package + "@" + k.Version
}

// FoundDependency is one resolved dependency fact, produced by an
// in-process lockfile parser or the remote resolution engine.
type FoundDependency struct {
	Package      string       `json:"package"`
	Version      string       `json:"version"`
	Ecosystem    Ecosystem    `json:"ecosystem,omitempty"`
	Transitivity Transitivity `json:"transitivity"`

	// Children holds lookup keys of this dependency's direct children.
	// They are weak references into the graph index, never ownership: a
	// referenced key may map to several entries or, in a malformed graph,
	// to none. Nil means the relationship is unknown.
	Children []DependencyKey `json:"children,omitempty"`

	// LockfilePath is the lockfile this entry originated from, if any.
	LockfilePath string `json:"lockfile_path,omitempty"`
	// ManifestPath is the manifest this entry was matched against, if any.
	ManifestPath string `json:"manifest_path,omitempty"`
}

// Key returns the graph index key for this dependency.
func (d FoundDependency) Key() DependencyKey {
	return DependencyKey{Package: d.Package, Version: d.Version}
}
