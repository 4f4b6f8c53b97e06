package stats_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/scan"
	"github.com/depscope/depscope/pkg/stats"
	"github.com/depscope/depscope/pkg/subproject"
)

func sampleResult() *scan.Result {
	unsupported := subproject.Subproject{
		RootDir: "/repo",
		Source: deps.ManifestOnly{Manifest: deps.Manifest{
			Kind: deps.ManifestConanfile,
			Path: "/repo/conanfile.py",
		}},
		Ecosystem: deps.EcosystemNone,
	}
	resolved := subproject.Subproject{
		RootDir: "/repo/py",
		Source: deps.LockfileOnly{Lockfile: deps.Lockfile{
			Kind: deps.LockfileRequirementsTxt,
			Path: "/repo/py/requirements.txt",
		}},
		Ecosystem: deps.EcosystemPypi,
	}
	return &scan.Result{
		Resolved: map[deps.Ecosystem][]subproject.Resolved{
			deps.EcosystemPypi: {subproject.NewResolved(
				resolved, deps.EcosystemPypi, subproject.MethodLockfileParsing, nil,
				[]deps.FoundDependency{{Package: "requests", Version: "2.31.0", Ecosystem: deps.EcosystemPypi}},
			)},
		},
		Unresolved: []subproject.Unresolved{
			subproject.NewUnresolved(unsupported, subproject.ReasonUnsupported, nil),
		},
	}
}

func TestCollect(t *testing.T) {
	started := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	st := stats.Collect(sampleResult(), started, 1500*time.Millisecond)

	if st.RunID == "" {
		t.Error("run id missing")
	}
	if st.DurationMS != 1500 {
		t.Errorf("duration = %d, want 1500", st.DurationMS)
	}
	if len(st.Subprojects) != 2 {
		t.Fatalf("expected 2 subproject records, got %d", len(st.Subprojects))
	}

	// unresolved first, then resolved per ecosystem
	if st.Subprojects[0].ResolvedStats != nil {
		t.Error("unresolved subproject should carry no resolved stats")
	}
	rs := st.Subprojects[1].ResolvedStats
	if rs == nil || rs.Ecosystem != deps.EcosystemPypi || rs.DependencyCount != 1 {
		t.Errorf("resolved stats wrong: %+v", rs)
	}
	if rs != nil && rs.Method != subproject.MethodLockfileParsing {
		t.Errorf("method = %s, want lockfile_parsing", rs.Method)
	}
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.jsonl")
	sink := stats.NewFileSink(path)

	started := time.Now().UTC()
	for range 2 {
		if err := sink.Record(context.Background(), stats.Collect(sampleResult(), started, time.Second)); err != nil {
			t.Fatal(err)
		}
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		var st stats.ScanStats
		if err := json.Unmarshal(scanner.Bytes(), &st); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		if len(st.Subprojects) != 2 {
			t.Errorf("line %d: expected 2 subprojects, got %d", lines, len(st.Subprojects))
		}
	}
	if lines != 2 {
		t.Errorf("expected 2 documents, got %d", lines)
	}
}
