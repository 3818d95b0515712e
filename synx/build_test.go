package synx

import (
	"errors"
	"testing"

	"github.com/backrex/backrex/token"
)

func TestBuildSimpleConcat(t *testing.T) {
	tree, err := Build([]byte("ab"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Root.Kind != KindConcat {
		t.Fatalf("want KindConcat, got %v", tree.Root.Kind)
	}
}

func TestBuildAlternation(t *testing.T) {
	tree, err := Build([]byte("a|b|c"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Root.Kind != KindOr {
		t.Fatalf("want KindOr, got %v", tree.Root.Kind)
	}
	if tree.Root.Right.Kind != KindOr {
		t.Fatalf("want right-skewed Or chain, got %v", tree.Root.Right.Kind)
	}
}

func TestBuildStarQuantifiers(t *testing.T) {
	cases := []struct {
		pattern string
		min     int
		max     int
	}{
		{"a*", 0, token.Unbounded},
		{"a+", 1, token.Unbounded},
		{"a?", 0, 1},
		{"a{2,4}", 2, 4},
	}
	for _, c := range cases {
		tree, err := Build([]byte(c.pattern), false)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", c.pattern, err)
		}
		if tree.Root.Kind != KindStar {
			t.Fatalf("%q: want KindStar, got %v", c.pattern, tree.Root.Kind)
		}
		if tree.Root.Min != c.min || tree.Root.Max != c.max {
			t.Errorf("%q: got (%d,%d), want (%d,%d)", c.pattern, tree.Root.Min, tree.Root.Max, c.min, c.max)
		}
	}
}

func TestBuildCapturingGroup(t *testing.T) {
	tree, err := Build([]byte("(ab)c"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.GroupCount != 1 {
		t.Fatalf("want 1 group recorded via groupCounter, got %d", tree.GroupCount)
	}
	if tree.Root.Kind != KindConcat {
		t.Fatalf("want top-level concat, got %v", tree.Root.Kind)
	}
	group := tree.Root.Left
	if len(group.GroupIndexes) != 1 || group.GroupIndexes[0] != 1 {
		t.Errorf("want group index [1], got %v", group.GroupIndexes)
	}
}

// Concentric groups with nothing else at that syntax level share one
// physical node for their content; every layer's index must survive.
func TestBuildConcentricGroups(t *testing.T) {
	tree, err := Build([]byte("(((ab)))"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.GroupCount != 3 {
		t.Fatalf("want 3 groups recorded via groupCounter, got %d", tree.GroupCount)
	}
	want := map[int]bool{1: true, 2: true, 3: true}
	got := map[int]bool{}
	for _, idx := range tree.Root.GroupIndexes {
		got[idx] = true
	}
	if len(got) != len(want) {
		t.Fatalf("want group indexes %v, got %v", want, tree.Root.GroupIndexes)
	}
	for idx := range want {
		if !got[idx] {
			t.Errorf("missing group index %d in %v", idx, tree.Root.GroupIndexes)
		}
	}
}

func TestBuildEmptyGroup(t *testing.T) {
	tree, err := Build([]byte("a()b"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a . () . b -> Concat(Concat(a, empty-group), b)
	mid := tree.Root.Left
	if mid.Kind != KindConcat {
		t.Fatalf("want nested concat, got %v", mid.Kind)
	}
	if mid.Right.Kind != KindEmpty || len(mid.Right.GroupIndexes) != 1 || mid.Right.GroupIndexes[0] != 1 {
		t.Errorf("want empty capturing group, got kind=%v groupIndexes=%v", mid.Right.Kind, mid.Right.GroupIndexes)
	}
}

func TestBuildBackReference(t *testing.T) {
	// Back-reference numbers are 0-based (spec §3): \0 names the first
	// group opened, which has internal GroupIndex 1.
	tree, err := Build([]byte(`(a)\0`), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := tree.Root.Right
	if ref.LeafKind != token.KindBackRef || ref.RefGroup != 1 {
		t.Errorf("want back-reference to group 1, got kind=%v ref=%d", ref.LeafKind, ref.RefGroup)
	}
}

func TestBuildBackReferenceOutOfRange(t *testing.T) {
	_, err := Build([]byte(`\1(a)`), true)
	if err == nil {
		t.Fatal("want error for back-reference to a group not yet opened")
	}
	if !errors.Is(err, token.ErrBackRefOutOfRange) {
		t.Errorf("want ErrBackRefOutOfRange, got %v", err)
	}
}

func TestBuildBackReferenceDisabled(t *testing.T) {
	// With back-references disabled, \1 is not classified as KindBackRef at
	// all, and falls through to "invalid escape character" from CanEscape.
	_, err := Build([]byte(`(a)\1`), false)
	if err == nil {
		t.Fatal("want error when back-references are disabled")
	}
}

func TestPrintRoundTrip(t *testing.T) {
	tree, err := Build([]byte("(ab|cd)*e"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Print(tree)
	if got == "" {
		t.Fatal("Print returned empty string")
	}
	reparsed, err := Build([]byte(got), false)
	if err != nil {
		t.Fatalf("printed form %q did not reparse: %v", got, err)
	}
	if reparsed.Root.Kind != KindConcat {
		t.Errorf("reparsed tree has unexpected shape: %v", reparsed.Root.Kind)
	}
}

func TestBuildUnmatchedParen(t *testing.T) {
	_, err := Build([]byte("a)b"), false)
	if err == nil {
		t.Fatal("want error for unmatched ')'")
	}
}
