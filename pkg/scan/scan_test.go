package scan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/resolve"
	"github.com/depscope/depscope/pkg/scan"
	"github.com/depscope/depscope/pkg/subproject"
)

type listTargets []string

func (l listTargets) ListTargets(context.Context) ([]string, error) { return l, nil }

type failingTargets struct{}

func (failingTargets) ListTargets(context.Context) ([]string, error) {
	return nil, errors.New("walk failed")
}

type fakeOutcome struct {
	res     *resolve.Resolution
	errs    []error
	targets []string
}

// fakeResolver returns canned outcomes keyed by the source's first display
// path and records every dispatch.
type fakeResolver struct {
	outcomes map[string]fakeOutcome
	calls    []string
}

func (f *fakeResolver) ResolveSource(_ context.Context, src deps.Source, _ resolve.Options) (*resolve.Resolution, []error, []string) {
	key := src.DisplayPaths()[0]
	f.calls = append(f.calls, key)
	o := f.outcomes[key]
	return o.res, o.errs, o.targets
}

func TestFindSubprojects(t *testing.T) {
	candidates := []string{
		"/repo/package.json",
		"/repo/package-lock.json",
		"/repo/py/requirements.txt",
		"/repo/src/main.js",
		"/repo/conanfile.py",
	}
	subs := scan.FindSubprojects(candidates, subproject.DefaultMatchers())
	if len(subs) != 3 {
		t.Fatalf("expected 3 subprojects, got %d: %v", len(subs), subs)
	}

	byEco := make(map[deps.Ecosystem]subproject.Subproject)
	for _, s := range subs {
		byEco[s.Ecosystem] = s
	}

	npm, ok := byEco[deps.EcosystemNpm]
	if !ok || npm.RootDir != "/repo" {
		t.Fatalf("no npm subproject at /repo: %v", subs)
	}
	if _, ok := npm.Source.(deps.ManifestLockfile); !ok {
		t.Errorf("package.json should pair with its lockfile, got %T", npm.Source)
	}

	if pypi := byEco[deps.EcosystemPypi]; pypi.RootDir != "/repo/py" {
		t.Errorf("no pypi subproject at /repo/py: %v", subs)
	}

	// conanfile.py is tracked but has no resolvable ecosystem
	if _, ok := byEco[deps.EcosystemNone]; !ok {
		t.Errorf("conanfile.py should yield an ecosystem-less subproject: %v", subs)
	}
}

func TestFindSubprojectsIsOrderIndependent(t *testing.T) {
	forward := []string{"/a/go.mod", "/b/Cargo.lock", "/c/package-lock.json"}
	backward := []string{"/c/package-lock.json", "/b/Cargo.lock", "/a/go.mod"}

	a := scan.FindSubprojects(forward, subproject.DefaultMatchers())
	b := scan.FindSubprojects(backward, subproject.DefaultMatchers())
	if len(a) != len(b) {
		t.Fatalf("subproject counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID() != b[i].ID() {
			t.Errorf("subproject %d differs across candidate orders", i)
		}
	}
}

func npmLockfileSub(root string) subproject.Subproject {
	return subproject.Subproject{
		RootDir: root,
		Source: deps.LockfileOnly{Lockfile: deps.Lockfile{
			Kind: deps.LockfilePackageLockJson,
			Path: root + "/package-lock.json",
		}},
		Ecosystem: deps.EcosystemNpm,
	}
}

func TestFilterChangedAllRelevantSkipsClosestPass(t *testing.T) {
	subs := []subproject.Subproject{npmLockfileSub("/repo"), npmLockfileSub("/repo/pkg")}
	changed := []string{"/repo/package-lock.json", "/repo/pkg/package-lock.json"}

	closestRan := false
	targets := func(string) []string {
		closestRan = true
		return nil
	}

	keep, skipped := scan.FilterChanged(subs, changed, []scan.Rule{
		{ID: "js-rule", Languages: []string{"javascript"}, Ecosystems: []deps.Ecosystem{deps.EcosystemNpm}},
	}, targets)
	if len(keep) != 2 || len(skipped) != 0 {
		t.Errorf("all subprojects should stay relevant, got keep=%d skipped=%d", len(keep), len(skipped))
	}
	if closestRan {
		t.Error("closest-subproject pass should be skipped when everything is already relevant")
	}
}

func TestFilterChangedMarksClosestOwner(t *testing.T) {
	// A owns the repo root, B the nested package. A changed file inside B
	// must make only B relevant.
	a := npmLockfileSub("/repo")
	b := npmLockfileSub("/repo/pkg")
	changed := []string{"/repo/pkg/index.js"}

	targets := func(lang string) []string {
		if lang != "javascript" {
			return nil
		}
		return changed
	}

	keep, skipped := scan.FilterChanged([]subproject.Subproject{a, b}, changed, []scan.Rule{
		{ID: "js-rule", Languages: []string{"javascript"}, Ecosystems: []deps.Ecosystem{deps.EcosystemNpm}},
	}, targets)

	if len(keep) != 1 || keep[0].RootDir != "/repo/pkg" {
		t.Errorf("only the closest owner should stay relevant, got %v", keep)
	}
	if len(skipped) != 1 || skipped[0].RootDir != "/repo" {
		t.Fatalf("the outer subproject should be skipped, got %v", skipped)
	}
	if skipped[0].Reason != subproject.ReasonSkipped {
		t.Errorf("reason = %s, want skipped", skipped[0].Reason)
	}
	if len(skipped[0].Errors) != 0 {
		t.Errorf("skipped subprojects carry no errors, got %v", skipped[0].Errors)
	}
}

func TestRun(t *testing.T) {
	resolver := &fakeResolver{outcomes: map[string]fakeOutcome{
		"/repo/py/requirements.txt": {
			res: &resolve.Resolution{
				Method: subproject.MethodLockfileParsing,
				Deps:   []deps.FoundDependency{{Package: "requests", Version: "2.31.0", Ecosystem: deps.EcosystemPypi}},
			},
			targets: []string{"/repo/py/requirements.txt"},
		},
		"/repo/Gemfile.lock": {
			errs: []error{errors.New("gemfile parsing not supported")},
		},
	}}

	s := scan.New(
		scan.WithTargetLister(listTargets{
			"/repo/py/requirements.txt",
			"/repo/Gemfile.lock",
			"/repo/conanfile.py",
		}),
		scan.WithResolver(resolver),
	)

	result, err := s.Run(context.Background(), scan.RunOptions{})
	if err != nil {
		t.Fatal(err)
	}

	pypi := result.Resolved[deps.EcosystemPypi]
	if len(pypi) != 1 || pypi[0].Graph.Count() != 1 {
		t.Errorf("pypi subproject should resolve with one dependency, got %v", pypi)
	}

	reasons := make(map[subproject.UnresolvedReason]int)
	for _, u := range result.Unresolved {
		reasons[u.Reason]++
	}
	if reasons[subproject.ReasonUnsupported] != 1 {
		t.Errorf("conanfile.py should be unsupported, got %v", reasons)
	}
	if reasons[subproject.ReasonFailed] != 1 {
		t.Errorf("the gem subproject should fail, got %v", reasons)
	}

	for _, u := range result.Unresolved {
		if u.Reason == subproject.ReasonFailed && len(u.Errors) != 1 {
			t.Errorf("failed subproject should keep its errors, got %v", u.Errors)
		}
	}

	// ecosystem-less subprojects are never dispatched
	for _, call := range resolver.calls {
		if call == "/repo/conanfile.py" {
			t.Error("unsupported subproject was dispatched")
		}
	}

	if len(result.DependencyTargets) != 1 || result.DependencyTargets[0] != "/repo/py/requirements.txt" {
		t.Errorf("dependency targets = %v", result.DependencyTargets)
	}
}

func TestRunDiffScanSkipsIrrelevant(t *testing.T) {
	resolver := &fakeResolver{outcomes: map[string]fakeOutcome{
		"/repo/pkg/package-lock.json": {
			res:     &resolve.Resolution{Method: subproject.MethodLockfileParsing},
			targets: []string{"/repo/pkg/package-lock.json"},
		},
	}}

	changed := []string{"/repo/pkg/index.js"}
	s := scan.New(
		scan.WithTargetLister(listTargets{
			"/repo/package-lock.json",
			"/repo/pkg/package-lock.json",
		}),
		scan.WithResolver(resolver),
	)

	result, err := s.Run(context.Background(), scan.RunOptions{
		ChangedFiles: changed,
		Rules: []scan.Rule{
			{ID: "js-rule", Languages: []string{"javascript"}, Ecosystems: []deps.Ecosystem{deps.EcosystemNpm}},
		},
		CodeTargets: func(lang string) []string {
			if lang == "javascript" {
				return changed
			}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(resolver.calls) != 1 || resolver.calls[0] != "/repo/pkg/package-lock.json" {
		t.Errorf("only the closest subproject should be dispatched, got %v", resolver.calls)
	}
	if len(result.Unresolved) != 1 || result.Unresolved[0].Reason != subproject.ReasonSkipped {
		t.Errorf("the outer subproject should be skipped, got %v", result.Unresolved)
	}
}

func TestRunResolveAllIgnoresBaseline(t *testing.T) {
	resolver := &fakeResolver{outcomes: map[string]fakeOutcome{}}
	s := scan.New(
		scan.WithTargetLister(listTargets{
			"/repo/package-lock.json",
			"/repo/pkg/package-lock.json",
		}),
		scan.WithResolver(resolver),
	)

	_, err := s.Run(context.Background(), scan.RunOptions{
		ChangedFiles: []string{"/unrelated.txt"},
		ResolveAll:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resolver.calls) != 2 {
		t.Errorf("resolve-all should dispatch everything, got %v", resolver.calls)
	}
}

func TestRunTargetListingFailureIsFatal(t *testing.T) {
	s := scan.New(scan.WithTargetLister(failingTargets{}), scan.WithResolver(&fakeResolver{}))
	if _, err := s.Run(context.Background(), scan.RunOptions{}); err == nil {
		t.Fatal("expected an error")
	}
}
