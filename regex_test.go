package backrex

import (
	"errors"
	"testing"

	"github.com/backrex/backrex/nfa"
	"github.com/backrex/backrex/token"
)

func TestCompileAndMatch(t *testing.T) {
	re, err := Compile(`[abc]+\d`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !re.MatchString("xxabc3xx") {
		t.Error("want partial match of [abc]+\\d somewhere in input")
	}
	if re.MatchString("xxxxx") {
		t.Error("want no match")
	}
}

func TestMustCompilePanicsOnInvalidPattern(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("want panic for invalid pattern")
		}
	}()
	MustCompile("a(b")
}

func TestMustCompileValidPattern(t *testing.T) {
	re := MustCompile(`\d+`)
	if !re.MatchString("42") {
		t.Error("want match")
	}
}

func TestCompileWithConfigAnchoredOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PartialMatch = false
	re, err := CompileWithConfig(`ab`, cfg)
	if err != nil {
		t.Fatalf("CompileWithConfig: %v", err)
	}
	if !re.MatchString("ab") {
		t.Error("want exact match")
	}
	if re.MatchString("xabx") {
		t.Error("want no match: PartialMatch is disabled")
	}
}

func TestCompileWithConfigBackRefsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BackRefsEnabled = false
	_, err := CompileWithConfig(`(a)\1`, cfg)
	if err == nil {
		t.Fatal("want error: back-references disabled, \\1 is an invalid escape")
	}
}

func TestCompileErrorIsStableSentinel(t *testing.T) {
	_, err := Compile(`[z-a]`)
	if !errors.Is(err, token.ErrInvertedRange) {
		t.Errorf("want errors.Is match against token.ErrInvertedRange, got %v", err)
	}
}

func TestCompileErrorTooComplex(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxStates = 4
	_, err := CompileWithConfig(`a{1,200}`, cfg)
	if !errors.Is(err, nfa.ErrTooComplex) {
		t.Errorf("want errors.Is match against nfa.ErrTooComplex, got %v", err)
	}
}

func TestGroups(t *testing.T) {
	re := MustCompile(`(\w+)@(\w+)`)
	if !re.MatchString("xx user@host xx") {
		t.Fatal("want match")
	}
	groups := re.Groups()
	if len(groups) != 2 {
		t.Fatalf("want 2 groups, got %d", len(groups))
	}
	if !groups[0].Matched || !groups[1].Matched {
		t.Error("both groups should be matched")
	}
}

func TestGroupsNilAfterFailedMatch(t *testing.T) {
	re := MustCompile(`(a)bc`)
	re.MatchString("abc") // prime lastGroups with a successful match first
	if re.MatchString("xyz") {
		t.Fatal("want no match")
	}
	if re.Groups() != nil {
		t.Error("want nil Groups after a failed Match call")
	}
}

func TestBackReferenceMatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PartialMatch = false
	re, err := CompileWithConfig(`a(bc)(\0df)(g\1)e`, cfg)
	if err != nil {
		t.Fatalf("CompileWithConfig: %v", err)
	}
	if !re.MatchString("abcbcdfgbcdfe") {
		t.Fatal("want match")
	}
	groups := re.Groups()
	want := []string{"bc", "bcdf", "gbcdf"}
	input := "abcbcdfgbcdfe"
	for i, w := range want {
		got := input[groups[i].Start:groups[i].End]
		if got != w {
			t.Errorf("group %d = %q, want %q", i, got, w)
		}
	}
}

func TestNumSubexp(t *testing.T) {
	re := MustCompile(`(a)(b(c))`)
	if got := re.NumSubexp(); got != 3 {
		t.Errorf("NumSubexp() = %d, want 3", got)
	}
}

func TestString(t *testing.T) {
	re := MustCompile(`\d+`)
	if got := re.String(); got != `\d+` {
		t.Errorf("String() = %q, want %q", got, `\d+`)
	}
}

func TestAlternationPrefilterDoesNotChangeResult(t *testing.T) {
	// A 4-branch literal alternation triggers the Aho-Corasick prefilter;
	// confirm it never rejects a haystack that actually matches.
	re := MustCompile(`cat|dog|fish|bird`)
	for _, s := range []string{"I have a dog", "a cat sat", "no pets", "goldfish"} {
		_ = re.MatchString(s)
	}
	if !re.MatchString("I have a dog") {
		t.Error("want match")
	}
	if re.MatchString("no pets here") {
		t.Error("want no match")
	}
	if !re.MatchString("goldfish") {
		t.Error("want match: 'fish' is a substring of 'goldfish'")
	}
}
