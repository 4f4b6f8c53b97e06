package cache

// Keyer generates cache keys for the cacheable operations of the scanner.
type Keyer interface {
	// EngineKey generates a key for a resolution engine response. The key
	// is derived from the source kind and the content hashes of every
	// source file, so editing any file invalidates the entry.
	EngineKey(sourceKind string, fileHashes []string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// EngineKey generates a key for engine response caching.
func (k *DefaultKeyer) EngineKey(sourceKind string, fileHashes []string) string {
	return hashKey("engine", sourceKind, fileHashes)
}

// ScopedKeyer wraps a Keyer with a prefix so several projects or tools can
// share one cache backend without key collisions.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// EngineKey generates a prefixed key for engine response caching.
func (k *ScopedKeyer) EngineKey(sourceKind string, fileHashes []string) string {
	return k.prefix + k.inner.EngineKey(sourceKind, fileHashes)
}
