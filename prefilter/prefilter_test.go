package prefilter

import (
	"testing"

	"github.com/backrex/backrex/synx"
)

func TestBuildAlternationLiteral(t *testing.T) {
	tree, err := synx.Build([]byte("foo|bar|baz|qux"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pf := Build(tree)
	if pf == nil {
		t.Fatal("want a prefilter for a 4-branch literal alternation")
	}
	if !pf.MayMatch([]byte("xxbarxx")) {
		t.Error("want MayMatch true for haystack containing a branch literal")
	}
	if pf.MayMatch([]byte("nothing here")) {
		t.Error("want MayMatch false for haystack containing no branch literal")
	}
}

func TestBuildAlternationBelowThreshold(t *testing.T) {
	tree, err := synx.Build([]byte("foo|bar"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only 2 branches: below minAlternationBranches, falls back to a
	// first-byte filter (still non-nil, since both branches start
	// determined single bytes "f" and "b").
	pf := Build(tree)
	if pf == nil {
		t.Fatal("want a first-byte fallback prefilter")
	}
	if !pf.MayMatch([]byte("xxbarxx")) {
		t.Error("want MayMatch true for haystack containing 'b'")
	}
}

func TestBuildAlternationWithNonLiteralBranch(t *testing.T) {
	tree, err := synx.Build([]byte("foo|ba.|qux|zap"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One branch contains '.', disqualifying the whole alternation from
	// the literal path; falls back to first-byte (all branches still
	// start with a determined literal byte).
	pf := Build(tree)
	if pf == nil {
		t.Fatal("want a first-byte fallback prefilter")
	}
	if _, ok := pf.(*alternationFilter); ok {
		t.Error("want fallback to firstByteFilter, not alternationFilter")
	}
}

func TestFirstByteSetLiteral(t *testing.T) {
	tree, err := synx.Build([]byte("abc"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pf := Build(tree)
	if pf == nil {
		t.Fatal("want a first-byte prefilter")
	}
	if !pf.MayMatch([]byte("xxaxx")) {
		t.Error("want MayMatch true for haystack containing 'a'")
	}
	if pf.MayMatch([]byte("xxxxx")) {
		t.Error("want MayMatch false for haystack without 'a'")
	}
}

func TestFirstByteSetClass(t *testing.T) {
	tree, err := synx.Build([]byte("[abc]xyz"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pf := Build(tree)
	if pf == nil {
		t.Fatal("want a first-byte prefilter for a leading class")
	}
	if !pf.MayMatch([]byte("zzbzz")) {
		t.Error("want MayMatch true for haystack containing a class member")
	}
	if pf.MayMatch([]byte("zzzzz")) {
		t.Error("want MayMatch false for haystack without a class member")
	}
}

func TestBuildNoFilterForOptionalPrefix(t *testing.T) {
	tree, err := synx.Build([]byte("a*bc"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pf := Build(tree); pf != nil {
		t.Errorf("want nil prefilter for a pattern with no mandatory first byte, got %T", pf)
	}
}

func TestBuildNoFilterForAnchoredPrefix(t *testing.T) {
	tree, err := synx.Build([]byte("^abc"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pf := Build(tree); pf != nil {
		t.Errorf("want nil prefilter when the leftmost leaf is an anchor, got %T", pf)
	}
}
