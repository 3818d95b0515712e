// Package prefilter builds a cheap, necessary-but-not-sufficient test over
// a compiled pattern's syntax tree, so backrex.Regex.Match can reject a
// haystack before paying for a full NFA simulation.
//
// Two shapes are recognized, tried in order of how much of the input they
// let a caller skip: a literal alternation ("foo|bar|baz", all branches
// plain text, spec's Or node chain) becomes an Aho-Corasick multi-pattern
// search; anything else falls back to the mandatory first byte (or byte
// class) the pattern must consume, scanned with internal/asciiscan. If
// neither applies, Build returns nil and the caller runs the NFA directly.
package prefilter

import (
	"github.com/coregx/ahocorasick"

	"github.com/backrex/backrex/internal/asciiscan"
	"github.com/backrex/backrex/synx"
	"github.com/backrex/backrex/token"
)

// minAlternationBranches is the smallest literal-only alternation worth
// building an automaton for; below this a handful of asciiscan.IndexAny
// calls (one per branch's first byte) would cost less to set up.
const minAlternationBranches = 3

// Literal is the interface a prefilter satisfies: MayMatch is a fast,
// possibly-false-positive test that a full match could still succeed.
// MayMatch == false is a proof the pattern cannot match b; MayMatch == true
// means nothing and the caller must still run the real matcher.
type Literal interface {
	MayMatch(b []byte) bool
}

// Build inspects tree and returns the best prefilter it can construct, or
// nil if no necessary condition cheaper than a full match could be
// extracted.
func Build(tree *synx.Tree) Literal {
	if lits, ok := collectAlternationLiterals(tree.Root, tree.Pattern); ok && len(lits) >= minAlternationBranches {
		builder := ahocorasick.NewBuilder()
		for _, lit := range lits {
			builder.AddPattern(lit)
		}
		if auto, err := builder.Build(); err == nil {
			return &alternationFilter{auto: auto}
		}
	}

	if set, ok := firstByteSet(tree.Root, tree.Pattern); ok {
		return &firstByteFilter{set: set}
	}

	return nil
}

type alternationFilter struct {
	auto *ahocorasick.Automaton
}

func (f *alternationFilter) MayMatch(b []byte) bool {
	return f.auto.IsMatch(b)
}

type firstByteFilter struct {
	set [256]bool
}

func (f *firstByteFilter) MayMatch(b []byte) bool {
	return asciiscan.IndexAny(b, f.set) >= 0
}

// collectAlternationLiterals walks an Or-chain (spec's right-leaning
// parse_alt output) and returns the literal text of every branch, failing
// if any branch is anything but a concatenation of plain bytes and
// single-byte escapes.
func collectAlternationLiterals(n *synx.Node, pattern []byte) ([][]byte, bool) {
	if n.Kind == synx.KindOr {
		left, ok := collectAlternationLiterals(n.Left, pattern)
		if !ok {
			return nil, false
		}
		right, ok := collectAlternationLiterals(n.Right, pattern)
		if !ok {
			return nil, false
		}
		return append(left, right...), true
	}

	lit, ok := literalBytes(n, pattern)
	if !ok || len(lit) == 0 {
		return nil, false
	}
	return [][]byte{lit}, true
}

// literalBytes returns the exact byte sequence n matches, if n is a
// concatenation of nothing but plain bytes and meta-character escapes
// (never a class, wildcard, anchor, back-reference, alternation, or
// repetition — any of those make the branch's matched text variable).
func literalBytes(n *synx.Node, pattern []byte) ([]byte, bool) {
	switch n.Kind {
	case synx.KindLeaf:
		switch n.LeafKind {
		case token.KindNormal:
			return []byte{pattern[n.Start]}, true
		case token.KindEscape:
			expanded := token.ExpandEscape(pattern[n.Start+1])
			if len(expanded) != 1 {
				return nil, false // \w, \d: a set, not a literal byte (\s is one space)
			}
			return expanded, true
		default:
			return nil, false
		}
	case synx.KindConcat:
		left, ok := literalBytes(n.Left, pattern)
		if !ok {
			return nil, false
		}
		right, ok := literalBytes(n.Right, pattern)
		if !ok {
			return nil, false
		}
		return append(left, right...), true
	default:
		return nil, false
	}
}

// firstByteSet returns the set of bytes the pattern could possibly start
// with, if that set is fully determined — i.e. the leftmost path through
// the tree never passes through an optional (min==0) repetition, an
// alternation with a branch lacking a determined first byte, an anchor, or
// a back-reference.
func firstByteSet(n *synx.Node, pattern []byte) ([256]bool, bool) {
	switch n.Kind {
	case synx.KindLeaf:
		return firstByteSetLeaf(n, pattern)
	case synx.KindConcat:
		return firstByteSet(n.Left, pattern)
	case synx.KindOr:
		left, ok := firstByteSet(n.Left, pattern)
		if !ok {
			return [256]bool{}, false
		}
		right, ok := firstByteSet(n.Right, pattern)
		if !ok {
			return [256]bool{}, false
		}
		var out [256]bool
		for i := range out {
			out[i] = left[i] || right[i]
		}
		return out, true
	case synx.KindStar:
		if n.Min < 1 {
			return [256]bool{}, false
		}
		return firstByteSet(n.Left, pattern)
	default: // synx.KindEmpty
		return [256]bool{}, false
	}
}

func firstByteSetLeaf(n *synx.Node, pattern []byte) ([256]bool, bool) {
	var set [256]bool
	switch n.LeafKind {
	case token.KindNormal:
		set[pattern[n.Start]] = true
		return set, true
	case token.KindEscape:
		for _, b := range token.ExpandEscape(pattern[n.Start+1]) {
			set[b] = true
		}
		return set, true
	case token.KindCharClass:
		table, err := token.ExpandClass(pattern, n.Start, n.End)
		if err != nil {
			return [256]bool{}, false
		}
		return table, true
	case token.KindDot:
		for b := 1; b <= 253; b++ {
			set[b] = true
		}
		return set, true
	default: // Head, Tail, BackRef: no determined byte
		return [256]bool{}, false
	}
}
