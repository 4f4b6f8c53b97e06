package subproject

import (
	"testing"

	"github.com/depscope/depscope/pkg/deps"
)

func TestExactLockfileManifestMatcher(t *testing.T) {
	m := ExactLockfileManifestMatcher{
		LockfileName: "package-lock.json", ManifestName: "package.json",
		LockfileKind: deps.LockfilePackageLockJson, ManifestKind: deps.ManifestPackageJson,
		Ecosystem: deps.EcosystemNpm, MakeManifestOnly: true,
	}

	t.Run("pairs lockfile with sibling manifest", func(t *testing.T) {
		subs, used := m.MakeSubprojects([]string{
			"/repo/package.json",
			"/repo/package-lock.json",
			"/repo/README.md",
		})
		if len(subs) != 1 {
			t.Fatalf("expected 1 subproject, got %d", len(subs))
		}
		src, ok := subs[0].Source.(deps.ManifestLockfile)
		if !ok {
			t.Fatalf("expected ManifestLockfile source, got %T", subs[0].Source)
		}
		if src.Manifest.Path != "/repo/package.json" || src.Lockfile.Path != "/repo/package-lock.json" {
			t.Errorf("wrong pairing: %+v", src)
		}
		if subs[0].RootDir != "/repo" {
			t.Errorf("wrong root: %s", subs[0].RootDir)
		}
		if len(used) != 2 {
			t.Errorf("expected 2 consumed paths, got %v", used)
		}
	})

	t.Run("lockfile without manifest becomes lockfile-only", func(t *testing.T) {
		subs, used := m.MakeSubprojects([]string{"/repo/package-lock.json"})
		if len(subs) != 1 {
			t.Fatalf("expected 1 subproject, got %d", len(subs))
		}
		if _, ok := subs[0].Source.(deps.LockfileOnly); !ok {
			t.Fatalf("expected LockfileOnly source, got %T", subs[0].Source)
		}
		if len(used) != 1 || used[0] != "/repo/package-lock.json" {
			t.Errorf("unexpected consumed paths %v", used)
		}
	})

	t.Run("lone manifest becomes manifest-only", func(t *testing.T) {
		subs, _ := m.MakeSubprojects([]string{"/repo/package.json"})
		if len(subs) != 1 {
			t.Fatalf("expected 1 subproject, got %d", len(subs))
		}
		if _, ok := subs[0].Source.(deps.ManifestOnly); !ok {
			t.Fatalf("expected ManifestOnly source, got %T", subs[0].Source)
		}
	})

	t.Run("manifest in another directory is not paired", func(t *testing.T) {
		subs, _ := m.MakeSubprojects([]string{
			"/repo/a/package-lock.json",
			"/repo/b/package.json",
		})
		if len(subs) != 2 {
			t.Fatalf("expected 2 subprojects, got %d", len(subs))
		}
		if _, ok := subs[0].Source.(deps.LockfileOnly); !ok {
			t.Errorf("expected LockfileOnly for /repo/a, got %T", subs[0].Source)
		}
		if _, ok := subs[1].Source.(deps.ManifestOnly); !ok {
			t.Errorf("expected ManifestOnly for /repo/b, got %T", subs[1].Source)
		}
	})

	t.Run("without manifest-only flag lone manifests are left alone", func(t *testing.T) {
		yarn := ExactLockfileManifestMatcher{
			LockfileName: "yarn.lock", ManifestName: "package.json",
			LockfileKind: deps.LockfileYarnLock, ManifestKind: deps.ManifestPackageJson,
			Ecosystem: deps.EcosystemNpm,
		}
		subs, used := yarn.MakeSubprojects([]string{"/repo/package.json"})
		if len(subs) != 0 || len(used) != 0 {
			t.Errorf("expected nothing, got subs=%v used=%v", subs, used)
		}
	})
}

func TestPatternManifestStaticLockfileMatcher(t *testing.T) {
	m := PatternManifestStaticLockfileMatcher{
		ManifestPattern: "*.csproj", LockfileName: "packages.lock.json",
		LockfileKind: deps.LockfileNugetPackagesLock, ManifestKind: deps.ManifestCsproj,
		Ecosystem: deps.EcosystemNuget, MakeManifestOnly: true,
	}

	if !m.Match("/app/App.csproj") || !m.Match("/app/packages.lock.json") {
		t.Fatal("Match should accept both manifest pattern and lockfile name")
	}
	if m.Match("/app/App.sln") {
		t.Fatal("Match accepted an unrelated file")
	}

	subs, used := m.MakeSubprojects([]string{
		"/app/App.csproj",
		"/app/packages.lock.json",
		"/lib/Lib.csproj",
	})
	if len(subs) != 2 {
		t.Fatalf("expected 2 subprojects, got %d", len(subs))
	}
	paired, ok := subs[0].Source.(deps.ManifestLockfile)
	if !ok {
		t.Fatalf("expected ManifestLockfile, got %T", subs[0].Source)
	}
	if paired.Manifest.Path != "/app/App.csproj" {
		t.Errorf("wrong manifest %s", paired.Manifest.Path)
	}
	if _, ok := subs[1].Source.(deps.ManifestOnly); !ok {
		t.Errorf("expected ManifestOnly for unpaired csproj, got %T", subs[1].Source)
	}
	if len(used) != 3 {
		t.Errorf("expected all 3 files consumed, got %v", used)
	}
}

func TestExactManifestOnlyMatcher(t *testing.T) {
	m := ExactManifestOnlyMatcher{
		ManifestName: "pom.xml", ManifestKind: deps.ManifestPomXml,
		Ecosystem: deps.EcosystemMaven,
	}
	subs, used := m.MakeSubprojects([]string{
		"/svc/pom.xml",
		"/svc/sub/pom.xml",
		"/svc/build.gradle",
	})
	if len(subs) != 2 || len(used) != 2 {
		t.Fatalf("expected 2 subprojects and 2 consumed, got %d and %d", len(subs), len(used))
	}
	if subs[0].RootDir != "/svc" || subs[1].RootDir != "/svc/sub" {
		t.Errorf("unexpected roots %s, %s", subs[0].RootDir, subs[1].RootDir)
	}
}

func TestDefaultMatchersOrdering(t *testing.T) {
	// Lockfile-pairing matchers must come before manifest-only matchers so
	// a pom.xml next to a maven_dep_tree.txt is claimed by the pairing.
	sawManifestOnly := false
	for _, m := range DefaultMatchers() {
		_, manifestOnly := m.(ExactManifestOnlyMatcher)
		if manifestOnly {
			sawManifestOnly = true
			continue
		}
		if sawManifestOnly {
			t.Fatal("lockfile-pairing matcher appears after a manifest-only matcher")
		}
	}
	if !sawManifestOnly {
		t.Fatal("no manifest-only matchers registered")
	}
}

func TestDefaultMatchersReturnsFreshSlice(t *testing.T) {
	a := DefaultMatchers()
	b := DefaultMatchers()
	if len(a) == 0 {
		t.Fatal("no matchers registered")
	}
	a[0] = nil
	if b[0] == nil {
		t.Error("mutating one returned slice leaked into another call's result")
	}
}
