package depgraph

import (
	"strings"
	"testing"

	"github.com/depscope/depscope/pkg/deps"
)

func TestWriteTree(t *testing.T) {
	root := dep("app", "1.0.0", deps.TransitivityDirect, key("lib", "2.0.0"))
	lib := dep("lib", "2.0.0", deps.TransitivityTransitive, key("core", "3.0.0"))
	core := dep("core", "3.0.0", deps.TransitivityTransitive)
	orphan := dep("orphan", "0.1.0", deps.TransitivityUnknown)

	g := New([]deps.FoundDependency{root, lib, core, orphan})

	var buf strings.Builder
	missing := g.WriteTree(&buf)
	out := buf.String()

	if len(missing) != 0 {
		t.Fatalf("expected no missing keys, got %v", missing)
	}
	for _, want := range []string{"app@1.0.0", "lib@2.0.0", "core@3.0.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "other unknown transitivity:") || !strings.Contains(out, "orphan@0.1.0") {
		t.Errorf("unreached unknown entry not bucketed:\n%s", out)
	}
}

func TestWriteTreeCycleGuard(t *testing.T) {
	a := dep("a", "1.0.0", deps.TransitivityDirect, key("b", "1.0.0"))
	b := dep("b", "1.0.0", deps.TransitivityTransitive, key("a", "1.0.0"))
	g := New([]deps.FoundDependency{a, b})

	var buf strings.Builder
	g.WriteTree(&buf) // must terminate
	if !strings.Contains(buf.String(), "(already shown)") {
		t.Errorf("re-encountered key not rendered as leaf:\n%s", buf.String())
	}
}

func TestWriteTreeReportsMissingChildren(t *testing.T) {
	a := dep("a", "1.0.0", deps.TransitivityDirect, key("ghost", "9.9.9"))
	g := New([]deps.FoundDependency{a})

	var buf strings.Builder
	missing := g.WriteTree(&buf)

	if len(missing) != 1 || missing[0] != key("ghost", "9.9.9") {
		t.Fatalf("expected ghost@9.9.9 reported as missing, got %v", missing)
	}
	if !strings.Contains(buf.String(), "(not in graph)") {
		t.Errorf("missing reference not annotated:\n%s", buf.String())
	}
}

func TestWriteTreeFirstEntryPerKey(t *testing.T) {
	parent := dep("parent", "1.0.0", deps.TransitivityDirect, key("dup", "1.0.0"))
	first := dep("dup", "1.0.0", deps.TransitivityTransitive, key("under-first", "1.0.0"))
	second := dep("dup", "1.0.0", deps.TransitivityTransitive, key("under-second", "1.0.0"))
	underFirst := dep("under-first", "1.0.0", deps.TransitivityTransitive)
	underSecond := dep("under-second", "1.0.0", deps.TransitivityTransitive)

	g := New([]deps.FoundDependency{parent, first, second, underFirst, underSecond})

	var buf strings.Builder
	g.WriteTree(&buf)
	out := buf.String()

	i := strings.Index(out, "under-first@1.0.0")
	j := strings.Index(out, "other transitive:")
	if i == -1 || j == -1 || i > j {
		t.Errorf("first duplicate entry's children should be expanded in the rooted walk:\n%s", out)
	}
	// the second duplicate's child is never expanded, so it lands in the
	// leftover bucket
	k := strings.Index(out, "under-second@1.0.0")
	if k == -1 || k < j {
		t.Errorf("second duplicate entry's children should only appear in the bucket:\n%s", out)
	}
}

func TestToDOT(t *testing.T) {
	a := dep("a", "1.0.0", deps.TransitivityDirect, key("b", "2.0.0"), key("ghost", "0.0.0"))
	b := dep("b", "2.0.0", deps.TransitivityTransitive)
	g := New([]deps.FoundDependency{a, b})

	dot := g.ToDOT()
	for _, want := range []string{
		"digraph dependencies",
		`"a@1.0.0" -> "b@2.0.0"`,
		`"a@1.0.0" -> "ghost@0.0.0"`,
		"fillcolor=lightblue",
		"dashed",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}
