package synx

import "github.com/backrex/backrex/token"

// Kind identifies a syntax node's shape.
type Kind uint8

const (
	// KindEmpty matches the zero-length string; it is the content of an
	// empty capturing group "()".
	KindEmpty Kind = iota
	// KindLeaf is a single atomic token: a literal, an escape, a class, the
	// wildcard, an anchor, or a back-reference.
	KindLeaf
	// KindConcat is the ordered concatenation of Left then Right.
	KindConcat
	// KindOr is the alternation of Left or Right.
	KindOr
	// KindStar is Left repeated between Min and Max times
	// (token.Unbounded for no upper bound).
	KindStar
)

// Node is one node of the syntax tree. Which fields are meaningful depends
// on Kind:
//
//   - KindLeaf: LeafKind, Start, End (and RefGroup for token.KindBackRef)
//   - KindConcat, KindOr: Left, Right
//   - KindStar: Left, Min, Max
//
// GroupIndexes lists every capturing group whose content is exactly this
// node — i.e. one entry per '(' immediately wrapping this node, each entry
// being 1 + the number of '(' seen earlier in the pattern. Concentric groups
// with nothing else at that syntax level (e.g. "((a))") share one physical
// node for their content, so GroupIndexes can hold more than one entry
// (inner-layer indexes appended first, since the parser attaches each
// layer's index only after recursing into it); order has no bearing on
// matching since every index in the slice opens and closes at the same
// state pair. A node that is not any capturing group's direct content has a
// nil slice.
type Node struct {
	Kind Kind

	Left  *Node
	Right *Node

	GroupIndexes []int // nil means "not a capturing group's content"

	LeafKind token.Kind
	Start    int // half-open token range within Tree.Pattern
	End      int
	RefGroup int // for LeafKind == token.KindBackRef

	Min int // for KindStar
	Max int // for KindStar
}

// Tree is the parsed form of one pattern.
type Tree struct {
	Root            *Node
	Pattern         []byte
	BackRefsEnabled bool
	GroupCount      int
	HasBackRefs     bool
	HasHead         bool // pattern contains a '^' leaf anywhere, inside groups too
	HasTail         bool // pattern contains a '$' leaf anywhere, inside groups too
}
