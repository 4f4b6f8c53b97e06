// Package resolve implements the dependency resolution dispatcher: given
// one dependency source, pick a strategy (remote engine vs in-process
// parsing), fall back when the preferred path yields nothing, and
// aggregate the results of multi-lockfile sources.
package resolve

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/subproject"
)

// Engine is the port to the remote resolution engine. The resolved flag
// distinguishes "engine produced a (possibly empty) dependency list" from
// "engine could not resolve"; only the former stops the dispatcher from
// falling back to in-process parsing.
type Engine interface {
	Resolve(ctx context.Context, src deps.Source) (found []deps.FoundDependency, resolved bool, errs []error, targets []string)
}

// Options are the per-scan policy flags of the dispatcher.
type Options struct {
	// AllowDynamic permits dynamic resolution: building or executing the
	// project (via the engine) to observe the real dependency set.
	AllowDynamic bool

	// PathToTransitivity enables the engine-first path for lockfile-bearing
	// sources whose kind pair qualifies, to recover child relationships
	// the in-process parsers cannot produce.
	PathToTransitivity bool
}

// Resolution is a successful dispatch outcome. A nil *Resolution means the
// source could not be resolved; the dependency list of a non-nil
// Resolution may still be empty.
type Resolution struct {
	Method subproject.ResolutionMethod
	Deps   []deps.FoundDependency
}

// Resolver dispatches dependency sources to the engine or the in-process
// parser registry.
type Resolver struct {
	engine  Engine
	parsers map[deps.LockfileKind]ParserFunc
	logger  *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEngine sets the remote engine. Without one, every engine-first path
// is skipped and only in-process parsing happens.
func WithEngine(e Engine) Option {
	return func(r *Resolver) { r.engine = e }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithParsers overrides the parser registry. Used in tests.
func WithParsers(parsers map[deps.LockfileKind]ParserFunc) Option {
	return func(r *Resolver) { r.parsers = parsers }
}

// New creates a Resolver with the default parser registry.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		parsers: DefaultParsers(),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveSource resolves one dependency source. Returns:
//   - the resolution (nil when the source could not be resolved)
//   - the parse and resolution errors encountered
//   - the paths consumed as dependency targets
//
// Failure is always silent-by-default: an unsupported or unparseable kind
// yields (nil, nil, nil), not an error.
func (r *Resolver) ResolveSource(ctx context.Context, src deps.Source, opts Options) (*Resolution, []error, []string) {
	switch s := src.(type) {
	case deps.LockfileOnly:
		return r.resolveLockfileSource(ctx, s.Lockfile, nil, src, opts)
	case deps.ManifestLockfile:
		return r.resolveLockfileSource(ctx, s.Lockfile, &s.Manifest, src, opts)
	case deps.MultiLockfile:
		return r.resolveMultiSource(ctx, s)
	case deps.ManifestOnly:
		return r.resolveManifestOnlySource(ctx, s, opts)
	}
	return nil, nil, nil
}

// resolveManifestOnlySource handles sources with no lockfile at all. These
// are resolvable only dynamically, and only for manifest kinds the engine
// can build without a lockfile.
func (r *Resolver) resolveManifestOnlySource(ctx context.Context, src deps.ManifestOnly, opts Options) (*Resolution, []error, []string) {
	if !opts.AllowDynamic || r.engine == nil {
		return nil, nil, nil
	}
	if !dynamicResolutionKinds[kindPair{manifest: src.Manifest.Kind}] {
		return nil, nil, nil
	}

	found, resolved, errs, targets := r.engine.Resolve(ctx, src)
	if !resolved {
		return nil, errs, targets
	}
	return &Resolution{Method: subproject.MethodDynamic, Deps: found}, errs, targets
}

// resolveLockfileSource handles lockfile-bearing sources: engine first
// when the kind pair qualifies, then the in-process parser keyed by
// lockfile kind.
func (r *Resolver) resolveLockfileSource(ctx context.Context, lockfile deps.Lockfile, manifest *deps.Manifest, src deps.Source, opts Options) (*Resolution, []error, []string) {
	if opts.PathToTransitivity && r.engine != nil {
		pair := kindPair{lockfile: lockfile.Kind}
		if manifest != nil {
			pair.manifest = manifest.Kind
		}

		// Some pairs delegate ordinary static parsing to the engine
		// because the in-process grammar is insufficient; that path is
		// still tagged as lockfile parsing. Others qualify for true
		// dynamic resolution when the policy flag allows it.
		useDelegated := delegatedParsingKinds[pair]
		useDynamic := opts.AllowDynamic && dynamicResolutionKinds[pair]

		if useDelegated || useDynamic {
			r.logger.Debug("resolving via engine", "paths", src.DisplayPaths())
			found, resolved, errs, targets := r.engine.Resolve(ctx, src)
			for _, err := range errs {
				r.logger.Debug("engine resolution error", "error", err)
			}
			if resolved {
				method := subproject.MethodDynamic
				if useDelegated {
					method = subproject.MethodLockfileParsing
				}
				return &Resolution{Method: method, Deps: found}, errs, targets
			}
			// fall back to the in-process parser; the engine's errors are
			// logged above but not surfaced, since the fallback may still
			// succeed cleanly
		}
	}

	parser := r.parsers[lockfile.Kind]
	if parser == nil {
		// recognized-but-unsupported kind, or a kind we do not know at
		// all; either way there is nothing to parse with
		return nil, nil, nil
	}

	manifestPath := ""
	if manifest != nil {
		manifestPath = manifest.Path
	}
	found, parseErrs := parser(lockfile.Path, manifestPath)

	errs := make([]error, 0, len(parseErrs))
	for _, pe := range parseErrs {
		errs = append(errs, pe)
	}
	return &Resolution{Method: subproject.MethodLockfileParsing, Deps: found}, errs, []string{lockfile.Path}
}

// resolveMultiSource resolves every child independently and concatenates
// the outcomes in child order. Dynamic resolution and path-to-transitivity
// are forced off for children: the engine resolves one lockfile target per
// call, and multi-source batching has never been wired up.
func (r *Resolver) resolveMultiSource(ctx context.Context, src deps.MultiLockfile) (*Resolution, []error, []string) {
	var allDeps []deps.FoundDependency
	var allErrs []error
	var allTargets []string
	sawDynamic := false

	for _, child := range src.Sources {
		res, errs, targets := r.ResolveSource(ctx, child, Options{})
		if res != nil {
			if res.Method == subproject.MethodDynamic {
				sawDynamic = true
			}
			allDeps = append(allDeps, res.Deps...)
		}
		allErrs = append(allErrs, errs...)
		allTargets = append(allTargets, targets...)
	}

	// If any child was resolved dynamically, tag the whole subproject
	// dynamic. An arbitrary choice, kept for output stability.
	method := subproject.MethodLockfileParsing
	if sawDynamic {
		method = subproject.MethodDynamic
	}
	return &Resolution{Method: method, Deps: allDeps}, allErrs, allTargets
}
