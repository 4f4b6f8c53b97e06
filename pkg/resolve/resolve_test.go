package resolve_test

import (
	"context"
	"errors"
	"testing"

	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/resolve"
	"github.com/depscope/depscope/pkg/subproject"
)

// fakeEngine returns a canned outcome and records every source it was
// handed.
type fakeEngine struct {
	found    []deps.FoundDependency
	resolved bool
	errs     []error
	targets  []string
	calls    []deps.Source
}

func (f *fakeEngine) Resolve(_ context.Context, src deps.Source) ([]deps.FoundDependency, bool, []error, []string) {
	f.calls = append(f.calls, src)
	return f.found, f.resolved, f.errs, f.targets
}

// stubParser returns the given dependencies and records the paths it saw.
func stubParser(found []deps.FoundDependency) (resolve.ParserFunc, *[]string) {
	var paths []string
	fn := func(lockfilePath, manifestPath string) ([]deps.FoundDependency, []deps.ParseError) {
		paths = append(paths, lockfilePath, manifestPath)
		return found, nil
	}
	return fn, &paths
}

func pipLockfile(path string) deps.Lockfile {
	return deps.Lockfile{Kind: deps.LockfileRequirementsTxt, Path: path}
}

func pyDep(name, version string) deps.FoundDependency {
	return deps.FoundDependency{Package: name, Version: version, Ecosystem: deps.EcosystemPypi}
}

func TestResolveLockfileOnlyUsesParser(t *testing.T) {
	parser, seen := stubParser([]deps.FoundDependency{pyDep("requests", "2.31.0")})
	r := resolve.New(resolve.WithParsers(map[deps.LockfileKind]resolve.ParserFunc{
		deps.LockfileRequirementsTxt: parser,
	}))

	src := deps.LockfileOnly{Lockfile: pipLockfile("/repo/requirements.txt")}
	res, errs, targets := r.ResolveSource(context.Background(), src, resolve.Options{})
	if res == nil {
		t.Fatal("expected a resolution")
	}
	if res.Method != subproject.MethodLockfileParsing {
		t.Errorf("method = %s, want lockfile_parsing", res.Method)
	}
	if len(res.Deps) != 1 || res.Deps[0].Package != "requests" {
		t.Errorf("unexpected deps: %v", res.Deps)
	}
	if len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
	if len(targets) != 1 || targets[0] != "/repo/requirements.txt" {
		t.Errorf("targets = %v", targets)
	}
	if (*seen)[1] != "" {
		t.Errorf("lockfile-only source should pass no manifest path, got %q", (*seen)[1])
	}
}

func TestResolveManifestLockfilePassesManifestPath(t *testing.T) {
	parser, seen := stubParser(nil)
	r := resolve.New(resolve.WithParsers(map[deps.LockfileKind]resolve.ParserFunc{
		deps.LockfileRequirementsTxt: parser,
	}))

	src := deps.ManifestLockfile{
		Manifest: deps.Manifest{Kind: deps.ManifestRequirementsIn, Path: "/repo/requirements.in"},
		Lockfile: pipLockfile("/repo/requirements.txt"),
	}
	res, _, _ := r.ResolveSource(context.Background(), src, resolve.Options{})
	if res == nil {
		t.Fatal("expected a resolution")
	}
	if res.Deps != nil {
		t.Errorf("empty parse should keep a nil list, got %v", res.Deps)
	}
	if (*seen)[0] != "/repo/requirements.txt" || (*seen)[1] != "/repo/requirements.in" {
		t.Errorf("parser saw %v", *seen)
	}
}

func TestResolveUnsupportedKindIsSilent(t *testing.T) {
	r := resolve.New(resolve.WithParsers(map[deps.LockfileKind]resolve.ParserFunc{
		deps.LockfileYarnLock: nil,
	}))

	src := deps.LockfileOnly{Lockfile: deps.Lockfile{Kind: deps.LockfileYarnLock, Path: "/repo/yarn.lock"}}
	res, errs, targets := r.ResolveSource(context.Background(), src, resolve.Options{})
	if res != nil || errs != nil || targets != nil {
		t.Errorf("unsupported kind should yield nothing, got %v / %v / %v", res, errs, targets)
	}
}

func TestResolveManifestOnlyRequiresDynamic(t *testing.T) {
	engine := &fakeEngine{resolved: true}
	r := resolve.New(resolve.WithEngine(engine))
	src := deps.ManifestOnly{Manifest: deps.Manifest{Kind: deps.ManifestPomXml, Path: "/svc/pom.xml"}}

	res, _, _ := r.ResolveSource(context.Background(), src, resolve.Options{})
	if res != nil {
		t.Error("manifest-only source should be unresolvable without dynamic resolution")
	}
	if len(engine.calls) != 0 {
		t.Errorf("engine should not be called, saw %d calls", len(engine.calls))
	}
}

func TestResolveManifestOnlyDynamic(t *testing.T) {
	engine := &fakeEngine{
		found:    []deps.FoundDependency{{Package: "org.slf4j:slf4j-api", Version: "2.0.9", Ecosystem: deps.EcosystemMaven}},
		resolved: true,
		targets:  []string{"/svc/pom.xml"},
	}
	r := resolve.New(resolve.WithEngine(engine))
	src := deps.ManifestOnly{Manifest: deps.Manifest{Kind: deps.ManifestPomXml, Path: "/svc/pom.xml"}}

	res, errs, targets := r.ResolveSource(context.Background(), src, resolve.Options{AllowDynamic: true})
	if res == nil {
		t.Fatal("expected a resolution")
	}
	if res.Method != subproject.MethodDynamic {
		t.Errorf("method = %s, want dynamic", res.Method)
	}
	if len(res.Deps) != 1 || len(errs) != 0 {
		t.Errorf("deps = %v, errs = %v", res.Deps, errs)
	}
	if len(targets) != 1 || targets[0] != "/svc/pom.xml" {
		t.Errorf("targets = %v", targets)
	}
}

func TestResolveManifestOnlyFailurePropagatesErrors(t *testing.T) {
	engineErr := errors.New("mvn dependency:tree exited 1")
	engine := &fakeEngine{resolved: false, errs: []error{engineErr}}
	r := resolve.New(resolve.WithEngine(engine))
	src := deps.ManifestOnly{Manifest: deps.Manifest{Kind: deps.ManifestPomXml, Path: "/svc/pom.xml"}}

	res, errs, _ := r.ResolveSource(context.Background(), src, resolve.Options{AllowDynamic: true})
	if res != nil {
		t.Error("failed dynamic resolution should yield no resolution")
	}
	if len(errs) != 1 || !errors.Is(errs[0], engineErr) {
		t.Errorf("engine errors should propagate for manifest-only sources, got %v", errs)
	}
}

func TestResolveManifestOnlyUnsupportedKindSkipsEngine(t *testing.T) {
	engine := &fakeEngine{resolved: true}
	r := resolve.New(resolve.WithEngine(engine))
	src := deps.ManifestOnly{Manifest: deps.Manifest{Kind: deps.ManifestPackageJson, Path: "/repo/package.json"}}

	res, _, _ := r.ResolveSource(context.Background(), src, resolve.Options{AllowDynamic: true})
	if res != nil || len(engine.calls) != 0 {
		t.Errorf("package.json alone is not dynamically resolvable, got %v after %d calls", res, len(engine.calls))
	}
}

func TestResolveEngineFirstForEligiblePair(t *testing.T) {
	engine := &fakeEngine{
		found:    []deps.FoundDependency{pyDep("requests", "2.31.0")},
		resolved: true,
		targets:  []string{"/repo/requirements.txt"},
	}
	parser, seen := stubParser([]deps.FoundDependency{pyDep("stale", "0.0.1")})
	r := resolve.New(
		resolve.WithEngine(engine),
		resolve.WithParsers(map[deps.LockfileKind]resolve.ParserFunc{
			deps.LockfileRequirementsTxt: parser,
		}),
	)

	src := deps.LockfileOnly{Lockfile: pipLockfile("/repo/requirements.txt")}
	opts := resolve.Options{AllowDynamic: true, PathToTransitivity: true}
	res, _, _ := r.ResolveSource(context.Background(), src, opts)
	if res == nil {
		t.Fatal("expected a resolution")
	}
	if res.Method != subproject.MethodDynamic {
		t.Errorf("method = %s, want dynamic", res.Method)
	}
	if len(res.Deps) != 1 || res.Deps[0].Package != "requests" {
		t.Errorf("expected the engine's deps, got %v", res.Deps)
	}
	if len(*seen) != 0 {
		t.Error("parser should not run when the engine resolves")
	}
}

func TestResolveEngineFailureFallsBackToParser(t *testing.T) {
	engine := &fakeEngine{resolved: false, errs: []error{errors.New("pip install failed")}}
	parser, _ := stubParser([]deps.FoundDependency{pyDep("requests", "2.31.0")})
	r := resolve.New(
		resolve.WithEngine(engine),
		resolve.WithParsers(map[deps.LockfileKind]resolve.ParserFunc{
			deps.LockfileRequirementsTxt: parser,
		}),
	)

	src := deps.LockfileOnly{Lockfile: pipLockfile("/repo/requirements.txt")}
	opts := resolve.Options{AllowDynamic: true, PathToTransitivity: true}
	res, errs, targets := r.ResolveSource(context.Background(), src, opts)
	if res == nil {
		t.Fatal("expected the parser fallback to resolve")
	}
	if res.Method != subproject.MethodLockfileParsing {
		t.Errorf("method = %s, want lockfile_parsing", res.Method)
	}
	if len(errs) != 0 {
		t.Errorf("engine errors should not surface after a clean fallback, got %v", errs)
	}
	if len(targets) != 1 || targets[0] != "/repo/requirements.txt" {
		t.Errorf("targets = %v", targets)
	}
	if len(engine.calls) != 1 {
		t.Errorf("engine should be tried once, saw %d calls", len(engine.calls))
	}
}

func TestResolveDelegatedPairTaggedLockfileParsing(t *testing.T) {
	engine := &fakeEngine{
		found:    []deps.FoundDependency{{Package: "express", Version: "4.18.2", Ecosystem: deps.EcosystemNpm}},
		resolved: true,
		targets:  []string{"/repo/package-lock.json"},
	}
	r := resolve.New(resolve.WithEngine(engine))
	src := deps.ManifestLockfile{
		Manifest: deps.Manifest{Kind: deps.ManifestPackageJson, Path: "/repo/package.json"},
		Lockfile: deps.Lockfile{Kind: deps.LockfilePackageLockJson, Path: "/repo/package-lock.json"},
	}

	// delegated parsing needs no dynamic permission
	res, _, _ := r.ResolveSource(context.Background(), src, resolve.Options{PathToTransitivity: true})
	if res == nil {
		t.Fatal("expected a resolution")
	}
	if res.Method != subproject.MethodLockfileParsing {
		t.Errorf("delegated parsing must stay tagged lockfile_parsing, got %s", res.Method)
	}
	if len(engine.calls) != 1 {
		t.Errorf("engine should be called once, saw %d calls", len(engine.calls))
	}
}

func TestResolveNoEngineSkipsEngineFirstPath(t *testing.T) {
	parser, _ := stubParser([]deps.FoundDependency{pyDep("requests", "2.31.0")})
	r := resolve.New(resolve.WithParsers(map[deps.LockfileKind]resolve.ParserFunc{
		deps.LockfileRequirementsTxt: parser,
	}))

	src := deps.LockfileOnly{Lockfile: pipLockfile("/repo/requirements.txt")}
	opts := resolve.Options{AllowDynamic: true, PathToTransitivity: true}
	res, _, _ := r.ResolveSource(context.Background(), src, opts)
	if res == nil || res.Method != subproject.MethodLockfileParsing {
		t.Errorf("without an engine the parser path should run, got %v", res)
	}
}

func TestResolveMultiLockfileConcatenatesInOrder(t *testing.T) {
	perPath := func(lockfilePath, _ string) ([]deps.FoundDependency, []deps.ParseError) {
		if lockfilePath == "/repo/requirements.txt" {
			return []deps.FoundDependency{pyDep("requests", "2.31.0")}, nil
		}
		return []deps.FoundDependency{pyDep("pytest", "7.4.4")}, []deps.ParseError{
			{Path: lockfilePath, Parser: "requirements", Reason: "unpinned requirement"},
		}
	}

	engine := &fakeEngine{resolved: true}
	r := resolve.New(
		resolve.WithEngine(engine),
		resolve.WithParsers(map[deps.LockfileKind]resolve.ParserFunc{
			deps.LockfileRequirementsTxt: perPath,
		}),
	)

	src := deps.NewMultiLockfile(
		deps.LockfileOnly{Lockfile: pipLockfile("/repo/requirements.txt")},
		deps.LockfileOnly{Lockfile: pipLockfile("/repo/requirements-dev.txt")},
	)
	opts := resolve.Options{AllowDynamic: true, PathToTransitivity: true}
	res, errs, targets := r.ResolveSource(context.Background(), src, opts)
	if res == nil {
		t.Fatal("expected a resolution")
	}
	if res.Method != subproject.MethodLockfileParsing {
		t.Errorf("method = %s, want lockfile_parsing", res.Method)
	}
	want := []string{"requests", "pytest"}
	if len(res.Deps) != len(want) {
		t.Fatalf("deps = %v", res.Deps)
	}
	for i, name := range want {
		if res.Deps[i].Package != name {
			t.Errorf("deps[%d] = %s, want %s (child order must be preserved)", i, res.Deps[i].Package, name)
		}
	}
	if len(errs) != 1 {
		t.Errorf("child parse errors should aggregate, got %v", errs)
	}
	wantTargets := []string{"/repo/requirements.txt", "/repo/requirements-dev.txt"}
	if len(targets) != 2 || targets[0] != wantTargets[0] || targets[1] != wantTargets[1] {
		t.Errorf("targets = %v, want %v", targets, wantTargets)
	}

	// children resolve with dynamic resolution forced off
	if len(engine.calls) != 0 {
		t.Errorf("multi-lockfile children must not reach the engine, saw %d calls", len(engine.calls))
	}
}

func TestResolveMultiLockfileSurvivesFailedChildren(t *testing.T) {
	r := resolve.New(resolve.WithParsers(map[deps.LockfileKind]resolve.ParserFunc{
		deps.LockfileRequirementsTxt: nil,
	}))

	src := deps.NewMultiLockfile(
		deps.LockfileOnly{Lockfile: pipLockfile("/repo/requirements.txt")},
	)
	res, _, _ := r.ResolveSource(context.Background(), src, resolve.Options{})
	if res == nil {
		t.Fatal("a multi-lockfile source always yields a resolution")
	}
	if len(res.Deps) != 0 {
		t.Errorf("deps = %v", res.Deps)
	}
}
