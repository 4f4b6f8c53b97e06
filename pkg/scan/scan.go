// Package scan orchestrates a dependency scan: discover dependency source
// files, partition them into subprojects, filter by relevance on diff
// scans, and dispatch each subproject to the resolver, one at a time.
package scan

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/observability"
	"github.com/depscope/depscope/pkg/resolve"
	"github.com/depscope/depscope/pkg/subproject"
)

// TargetLister enumerates candidate files for a scan. The CLI backs it
// with a filesystem walker; tests hand in fixed lists.
type TargetLister interface {
	ListTargets(ctx context.Context) ([]string, error)
}

// SourceResolver is the dispatcher port. Satisfied by *resolve.Resolver.
type SourceResolver interface {
	ResolveSource(ctx context.Context, src deps.Source, opts resolve.Options) (*resolve.Resolution, []error, []string)
}

// ProgressObserver receives per-subproject progress. It is a side channel
// for UIs; the orchestrator never depends on what it does.
type ProgressObserver interface {
	OnProgress(completed, total int, label string)
}

// NopObserver ignores progress.
type NopObserver struct{}

func (NopObserver) OnProgress(int, int, string) {}

// RunOptions configures one scan run.
type RunOptions struct {
	// Resolve carries the dispatcher policy flags.
	Resolve resolve.Options

	// ChangedFiles is the diff baseline. Nil means a full scan; non-nil
	// restricts resolution to subprojects relevant to these files.
	ChangedFiles []string

	// Rules declare which ecosystems each scanned language cares about,
	// used for closest-subproject relevance on diff scans.
	Rules []Rule

	// CodeTargets returns the code files of one language this scan will
	// analyze. Consulted only on diff scans.
	CodeTargets CodeTargets

	// ResolveAll disables relevance filtering even on a diff scan.
	ResolveAll bool
}

// Result is the outcome of one scan run.
type Result struct {
	// Resolved holds resolved subprojects per ecosystem, in the order they
	// were dispatched.
	Resolved map[deps.Ecosystem][]subproject.Resolved

	// Unresolved holds skipped, unsupported and failed subprojects, in
	// presentation order.
	Unresolved []subproject.Unresolved

	// DependencyTargets lists every path consumed as dependency data.
	// Duplicates are kept; callers dedupe if they need to.
	DependencyTargets []string
}

// Scanner wires the orchestrator's collaborators together.
type Scanner struct {
	targets  TargetLister
	matchers []subproject.Matcher
	resolver SourceResolver
	observer ProgressObserver
	logger   *log.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithTargetLister sets the candidate file source. Required.
func WithTargetLister(t TargetLister) Option {
	return func(s *Scanner) { s.targets = t }
}

// WithResolver sets the dispatcher. Without one every dispatchable
// subproject fails.
func WithResolver(r SourceResolver) Option {
	return func(s *Scanner) { s.resolver = r }
}

// WithMatchers overrides the matcher list.
func WithMatchers(matchers []subproject.Matcher) Option {
	return func(s *Scanner) { s.matchers = matchers }
}

// WithObserver sets the progress observer.
func WithObserver(o ProgressObserver) Option {
	return func(s *Scanner) { s.observer = o }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// New creates a Scanner with the default matcher list.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		matchers: subproject.DefaultMatchers(),
		observer: NopObserver{},
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one scan. The only fatal error is a failed target listing;
// everything downstream is collected per subproject and never aborts the
// run.
func (s *Scanner) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if s.targets == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "scanner has no target lister")
	}

	candidates, err := s.targets.ListTargets(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "listing scan targets")
	}

	subs := FindSubprojects(candidates, s.matchers)
	s.logger.Debug("discovered subprojects", "count", len(subs), "candidates", len(candidates))
	observability.Scan().OnDiscoveryComplete(ctx, len(candidates), len(subs))

	result := &Result{Resolved: make(map[deps.Ecosystem][]subproject.Resolved)}

	if opts.ChangedFiles != nil && !opts.ResolveAll {
		var skipped []subproject.Unresolved
		subs, skipped = FilterChanged(subs, opts.ChangedFiles, opts.Rules, opts.CodeTargets)
		result.Unresolved = append(result.Unresolved, skipped...)
	}

	for i, sub := range subs {
		s.observer.OnProgress(i, len(subs), label(sub))

		if sub.Ecosystem == deps.EcosystemNone {
			result.Unresolved = append(result.Unresolved,
				subproject.NewUnresolved(sub, subproject.ReasonUnsupported, nil))
			continue
		}

		observability.Scan().OnSubprojectStart(ctx, string(sub.Ecosystem), label(sub))
		start := time.Now()
		res, errs, targets := s.resolveOne(ctx, sub, opts.Resolve)
		result.DependencyTargets = append(result.DependencyTargets, targets...)
		if res == nil {
			observability.Scan().OnSubprojectComplete(ctx, string(sub.Ecosystem), label(sub), 0, time.Since(start), firstError(errs))
			result.Unresolved = append(result.Unresolved,
				subproject.NewUnresolved(sub, subproject.ReasonFailed, errs))
			continue
		}
		observability.Scan().OnSubprojectComplete(ctx, string(sub.Ecosystem), label(sub), len(res.Deps), time.Since(start), nil)
		result.Resolved[sub.Ecosystem] = append(result.Resolved[sub.Ecosystem],
			subproject.NewResolved(sub, sub.Ecosystem, res.Method, errs, res.Deps))
	}
	s.observer.OnProgress(len(subs), len(subs), "")

	return result, nil
}

func (s *Scanner) resolveOne(ctx context.Context, sub subproject.Subproject, opts resolve.Options) (*resolve.Resolution, []error, []string) {
	if s.resolver == nil {
		return nil, []error{errors.New(errors.ErrCodeInvalidConfig, "scanner has no resolver")}, nil
	}
	return s.resolver.ResolveSource(ctx, sub.Source, opts)
}

func firstError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

func label(sub subproject.Subproject) string {
	if paths := sub.Source.DisplayPaths(); len(paths) > 0 {
		return paths[0]
	}
	return sub.RootDir
}
