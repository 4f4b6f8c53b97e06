// Package subproject defines the unit of dependency analysis: a
// directory-scoped grouping of manifest and lockfile files, plus the
// matchers that build subprojects from candidate files and the
// closest-subproject lookup used to associate code files with them.
package subproject

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/depscope/depscope/pkg/depgraph"
	"github.com/depscope/depscope/pkg/deps"
)

// Subproject is a directory-scoped unit of dependency analysis, identified
// by its dependency source files. Values are created at discovery time and
// never mutated; resolution produces new [Resolved] or [Unresolved] values.
type Subproject struct {
	// RootDir is the subproject root, usually the directory holding the
	// manifest or lockfile.
	RootDir string

	// Source is where dependency facts for this subproject come from.
	Source deps.Source

	// Ecosystem the subproject belongs to. EcosystemNone means the package
	// manager is recognized but unsupported for resolution; such
	// subprojects are kept for telemetry only and never dispatched.
	Ecosystem deps.Ecosystem
}

// ID returns the stable reporting identity of the subproject: the sha-256
// hex digest of the concatenation of all source display paths, each trimmed
// of whitespace and sorted before concatenation. Identical path sets hash
// identically regardless of input order.
func (s Subproject) ID() string {
	paths := s.Source.DisplayPaths()
	normalized := make([]string, len(paths))
	for i, p := range paths {
		normalized[i] = strings.TrimSpace(p)
	}
	sort.Strings(normalized)

	h := sha256.Sum256([]byte(strings.Join(normalized, "")))
	return hex.EncodeToString(h[:])
}

// ResolutionMethod describes how dependencies were obtained.
type ResolutionMethod string

const (
	// MethodDynamic means the dependency set was observed by building or
	// executing the project (or delegating that to the engine).
	MethodDynamic ResolutionMethod = "dynamic"
	// MethodLockfileParsing means dependencies were read from recorded
	// state, in-process or via a delegated parser.
	MethodLockfileParsing ResolutionMethod = "lockfile_parsing"
)

// UnresolvedReason explains why a subproject has no dependency graph.
type UnresolvedReason string

const (
	// ReasonFailed means resolution was attempted and no path produced
	// dependencies.
	ReasonFailed UnresolvedReason = "failed"
	// ReasonSkipped means the subproject was irrelevant for this scan.
	ReasonSkipped UnresolvedReason = "skipped"
	// ReasonUnsupported means the package manager has no resolvable
	// ecosystem.
	ReasonUnsupported UnresolvedReason = "unsupported"
)

// Unresolved is a subproject for which resolution was not performed or did
// not succeed.
type Unresolved struct {
	Subproject

	Reason UnresolvedReason
	// Errors holds deps.ParseError and deps.ResolutionError values
	// collected during the attempt. Empty for skipped and unsupported
	// subprojects.
	Errors []error
}

// NewUnresolved marks a subproject unresolved for the given reason.
func NewUnresolved(base Subproject, reason UnresolvedReason, errs []error) Unresolved {
	return Unresolved{Subproject: base, Reason: reason, Errors: errs}
}

// Resolved is a subproject plus its resolved dependency graph.
type Resolved struct {
	Subproject

	// Ecosystem is required here; a subproject without one is never
	// dispatched and so can never become Resolved.
	Ecosystem deps.Ecosystem

	Method ResolutionMethod
	// Errors holds the non-fatal errors collected while resolving; partial
	// success keeps both the graph and the errors.
	Errors []error
	Graph  *depgraph.Graph
}

// NewResolved builds a Resolved subproject from the dispatch outcome. The
// ecosystem is passed explicitly rather than read from base so the
// non-empty requirement shows up in the signature instead of a runtime
// check.
func NewResolved(base Subproject, eco deps.Ecosystem, method ResolutionMethod, errs []error, found []deps.FoundDependency) Resolved {
	return Resolved{
		Subproject: base,
		Ecosystem:  eco,
		Method:     method,
		Errors:     errs,
		Graph:      depgraph.New(found),
	}
}

// ResolutionStats is the stats projection of a successful resolution.
type ResolutionStats struct {
	Ecosystem       deps.Ecosystem   `json:"ecosystem" bson:"ecosystem"`
	Method          ResolutionMethod `json:"resolution_method" bson:"resolution_method"`
	DependencyCount int              `json:"dependency_count" bson:"dependency_count"`
}

// Stats is the telemetry projection of one subproject. The SubprojectID
// computation is part of the compatibility surface when results are
// compared across runs or tools.
type Stats struct {
	SubprojectID          string            `json:"subproject_id" bson:"subproject_id"`
	DependencySourceFiles []deps.SourceFile `json:"dependency_source_files" bson:"dependency_source_files"`
	ResolvedStats         *ResolutionStats  `json:"resolved_stats,omitempty" bson:"resolved_stats,omitempty"`
}

// Stats returns the telemetry projection of an unresolved subproject.
func (s Subproject) Stats() Stats {
	return Stats{
		SubprojectID:          s.ID(),
		DependencySourceFiles: s.Source.StatsFiles(),
	}
}

// Stats returns the telemetry projection including resolution outcome.
func (r Resolved) Stats() Stats {
	st := r.Subproject.Stats()
	st.ResolvedStats = &ResolutionStats{
		Ecosystem:       r.Ecosystem,
		Method:          r.Method,
		DependencyCount: r.Graph.Count(),
	}
	return st
}
