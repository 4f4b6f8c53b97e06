// Package deps defines the dependency-source data model shared by the
// resolution pipeline.
//
// A dependency source describes where dependency facts for a subproject come
// from: a lone manifest, a lone lockfile, a manifest/lockfile pair, or a
// group of lockfiles that together describe one subproject. Sources are
// immutable values created at discovery time; resolution never mutates them.
//
// The package also defines [FoundDependency], the unit of resolved dependency
// data produced by lockfile parsers and the remote resolution engine, along
// with the error types used across the three error tiers (parse errors,
// resolution errors).
package deps
