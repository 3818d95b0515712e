package nfa

import (
	"github.com/backrex/backrex/synx"
	"github.com/backrex/backrex/token"
)

// Compiler walks a syntax tree once and produces the states of the NFA it
// describes. It is not reused across patterns; call Compile for each tree.
type Compiler struct {
	b       *Builder
	pattern []byte
}

// Compile builds a Machine from tree. Options follow the functional-options
// shape of the rest of this module's public surface.
func Compile(tree *synx.Tree, opts ...BuildOption) (*Machine, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Compiler{b: NewBuilder(), pattern: tree.Pattern}
	start, accept, err := c.compileNode(tree.Root, NoState, false)
	if err != nil {
		return nil, &CompileError{Pattern: string(tree.Pattern), Err: err}
	}

	if cfg.PartialMatch {
		start, accept = installPartialMatchLoops(c.b, start, accept, tree.HasHead, tree.HasTail)
	}

	if cfg.MaxStates > 0 && c.b.Len() > cfg.MaxStates {
		return nil, &CompileError{Pattern: string(tree.Pattern), Err: ErrTooComplex}
	}

	return &Machine{
		states:          c.b.Snapshot(),
		start:           start,
		accept:          accept,
		groupCount:      tree.GroupCount,
		backrefsEnabled: tree.BackRefsEnabled,
		hasBackRefs:     tree.HasBackRefs,
		partialMatch:    cfg.PartialMatch,
	}, nil
}

// installPartialMatchLoops adds byte-consuming self-loops before start and
// after accept so RunMachine behaves as if the pattern were implicitly
// wrapped in ".*" on whichever end has no explicit anchor — but only if that
// end has no anchor recorded anywhere in the tree at all
// (tree.HasHead/tree.HasTail, set by package synx as '^'/'$' leaves are
// parsed), matching the original's independent headState_/tailState_
// checks. Each loop lives on a fresh state (a state has only one byte
// transition, which start may already use), and the returned start/accept
// are those fresh states where a loop was added.
func installPartialMatchLoops(b *Builder, start, accept StateID, hasHead, hasTail bool) (StateID, StateID) {
	var all ByteSet
	all.SetRange(0, 253)
	if !hasHead {
		loop := b.New(RoleStart)
		b.SetByte(loop, all, loop)
		b.AddEps(loop, start)
		b.Demote(start)
		start = loop
	}
	if !hasTail {
		loop := b.New(RoleAccept)
		b.SetByte(loop, all, loop)
		b.AddEps(accept, loop)
		b.Demote(accept)
		accept = loop
	}
	return start, accept
}

// compileNode builds the sub-NFA for n and, if n is the direct content of
// one or more capturing groups (len(n.GroupIndexes) > 0) and ignoreUnit is
// false, wraps it in a fresh unit-start/unit-accept pair shared by every
// group in n.GroupIndexes. parentUnit is the enclosing unit's start state,
// or NoState at the top level.
func (c *Compiler) compileNode(n *synx.Node, parentUnit StateID, ignoreUnit bool) (start, accept StateID, err error) {
	isUnit := len(n.GroupIndexes) > 0 && !ignoreUnit

	unitStart := parentUnit
	if isUnit {
		unitStart = c.b.New(RoleStart)
	}

	switch n.Kind {
	case synx.KindEmpty:
		start = c.b.New(RoleStart)
		accept = c.b.New(RoleAccept)
		c.b.AddEps(start, accept)
	case synx.KindLeaf:
		start, accept, err = c.compileLeaf(n)
	case synx.KindStar:
		start, accept, err = c.compileStar(n, ignoreUnit, unitStart)
	case synx.KindOr:
		start, accept, err = c.compileOr(n, ignoreUnit, unitStart)
	case synx.KindConcat:
		start, accept, err = c.compileConcat(n, ignoreUnit, unitStart)
	}
	if err != nil {
		return NoState, NoState, err
	}

	if c.b.State(start).ParentUnit == NoState {
		c.b.State(start).ParentUnit = unitStart
	}
	if c.b.State(accept).ParentUnit == NoState {
		c.b.State(accept).ParentUnit = unitStart
	}

	if isUnit {
		unitAccept := c.b.New(RoleAccept)
		c.b.Demote(start)
		c.b.Demote(accept)
		c.b.AddEps(unitStart, start)
		c.b.AddEps(accept, unitAccept)

		c.b.MarkFlag(unitStart, FlagUnitStart)
		c.b.MarkFlag(unitAccept, FlagUnitEnd)
		c.b.State(unitStart).GroupIndexes = n.GroupIndexes
		c.b.State(unitAccept).GroupIndexes = n.GroupIndexes

		c.b.State(unitStart).ParentUnit = parentUnit
		c.b.State(unitAccept).ParentUnit = unitStart

		start, accept = unitStart, unitAccept
	}

	return start, accept, nil
}

func (c *Compiler) compileLeaf(n *synx.Node) (StateID, StateID, error) {
	start := c.b.New(RoleStart)
	accept := c.b.New(RoleAccept)

	switch n.LeafKind {
	case token.KindDot:
		var set ByteSet
		set.SetRange(0, 253)
		c.b.SetByte(start, set, accept)

	case token.KindHead:
		c.b.AddEps(start, accept)
		c.b.MarkFlag(start, FlagHead)

	case token.KindTail:
		c.b.AddEps(start, accept)
		c.b.MarkFlag(accept, FlagTail)

	case token.KindCharClass:
		table, err := token.ExpandClass(c.pattern, n.Start, n.End)
		if err != nil {
			return NoState, NoState, err
		}
		c.b.SetByte(start, ByteSetFromTable(table), accept)

	case token.KindEscape:
		expanded := token.ExpandEscape(c.pattern[n.Start+1])
		var set ByteSet
		for _, eb := range expanded {
			set.Set(eb)
		}
		c.b.SetByte(start, set, accept)

	case token.KindBackRef:
		c.b.SetRef(start, accept, n.RefGroup)

	default: // token.KindNormal
		var set ByteSet
		set.Set(c.pattern[n.Start])
		c.b.SetByte(start, set, accept)
	}

	return start, accept, nil
}

func (c *Compiler) compileOr(n *synx.Node, ignoreUnit bool, parentUnit StateID) (StateID, StateID, error) {
	ls, la, err := c.compileNode(n.Left, parentUnit, ignoreUnit)
	if err != nil {
		return NoState, NoState, err
	}
	rs, ra, err := c.compileNode(n.Right, parentUnit, ignoreUnit)
	if err != nil {
		return NoState, NoState, err
	}

	c.b.Demote(rs)
	c.b.Demote(ra)
	c.b.AddEps(ls, rs)
	c.b.AddEps(ra, la)

	return ls, la, nil
}

func (c *Compiler) compileConcat(n *synx.Node, ignoreUnit bool, parentUnit StateID) (StateID, StateID, error) {
	ls, la, err := c.compileNode(n.Left, parentUnit, ignoreUnit)
	if err != nil {
		return NoState, NoState, err
	}
	rs, ra, err := c.compileNode(n.Right, parentUnit, ignoreUnit)
	if err != nil {
		return NoState, NoState, err
	}

	c.b.Demote(la)
	c.b.Demote(rs)
	c.b.AddEps(la, rs)

	return ls, ra, nil
}

// compileStar dispatches to one of four construction shapes depending on
// (min, max), following BuildStateForStarNode's case split: naive repetition
// by copying breaks when the body contains a capture group, since each copy
// must not reopen the group except the first.
func (c *Compiler) compileStar(n *synx.Node, ignoreUnit bool, parentUnit StateID) (StateID, StateID, error) {
	child := n.Left
	min, max := n.Min, n.Max

	switch {
	case min == 0 && max == token.Unbounded:
		return c.compileStarUnbounded(child, ignoreUnit, parentUnit)
	case min == 0:
		return c.compileStarOptionalChain(child, max, ignoreUnit, parentUnit)
	case max == token.Unbounded:
		return c.compileStarMandatoryLoop(child, min, ignoreUnit, parentUnit)
	default:
		return c.compileStarBoundedRange(child, min, max, ignoreUnit, parentUnit)
	}
}

// compileStarUnbounded handles min==0, max==Unbounded ("a*"): one copy of
// the body with an epsilon self-loop both ways, so it may be skipped
// entirely or repeated without limit.
func (c *Compiler) compileStarUnbounded(child *synx.Node, ignoreUnit bool, parentUnit StateID) (StateID, StateID, error) {
	start, accept, err := c.compileNode(child, parentUnit, ignoreUnit)
	if err != nil {
		return NoState, NoState, err
	}
	c.b.AddEps(start, accept)
	c.b.AddEps(accept, start)
	return start, accept, nil
}

// compileStarOptionalChain handles min==0 with a finite max ("a?", "a{0,n}"):
// max nested optional copies built right to left. Each copy's start can skip
// straight to the shared overall accept; each copy's accept chains into the
// previous copy's start, so consuming k of them (0 <= k <= max) lands on the
// same accept state.
func (c *Compiler) compileStarOptionalChain(child *synx.Node, max int, ignoreUnit bool, parentUnit StateID) (StateID, StateID, error) {
	firstStart, firstAccept, err := c.compileNode(child, parentUnit, ignoreUnit)
	if err != nil {
		return NoState, NoState, err
	}
	c.b.AddEps(firstStart, firstAccept)

	cs, ca := firstStart, firstAccept
	cs2 := firstStart
	for i := 0; i < max-1; i++ {
		cs, ca, err = c.compileNode(child, NoState, true)
		if err != nil {
			return NoState, NoState, err
		}
		c.b.Demote(ca)
		c.b.Demote(cs2)
		c.b.AddEps(ca, cs2)
		c.b.AddEps(cs, firstAccept)
		cs2 = cs
	}
	_ = ca

	return cs, firstAccept, nil
}

// compileStarMandatoryLoop handles max==Unbounded with min>0 ("a+",
// "a{3,}"): min mandatory copies concatenated, with an epsilon self-loop on
// only the last copy's accept back to its own start.
func (c *Compiler) compileStarMandatoryLoop(child *synx.Node, min int, ignoreUnit bool, parentUnit StateID) (StateID, StateID, error) {
	start, accept, err := c.compileNode(child, parentUnit, ignoreUnit)
	if err != nil {
		return NoState, NoState, err
	}

	ts, ta := start, accept
	for i := 0; i < min-1; i++ {
		cs, ca, err := c.compileNode(child, NoState, true)
		if err != nil {
			return NoState, NoState, err
		}
		c.b.Demote(ta)
		c.b.Demote(cs)
		c.b.AddEps(ta, cs)
		ts, ta = cs, ca
	}
	c.b.AddEps(ta, ts)

	return start, ta, nil
}

// compileStarBoundedRange handles min>0 with a finite max > min ("a{2,4}"):
// min mandatory copies followed by (max-min) optional copies. Falls through
// cleanly to the min==max case (accept is the mandatory chain's own end; no
// optional copies are built).
//
// The original builder clears the body's capture-group flag before building
// even the first mandatory copy in this case, so a group repeated with an
// explicit {m,n} range (m>0, n>m) never captures at all — that is treated as
// a construction defect rather than replicated. Here, as in the other three
// shapes, only copies after the first are built with ignoreUnit forced true.
func (c *Compiler) compileStarBoundedRange(child *synx.Node, min, max int, ignoreUnit bool, parentUnit StateID) (StateID, StateID, error) {
	start, firstAccept, err := c.compileNode(child, parentUnit, ignoreUnit)
	if err != nil {
		return NoState, NoState, err
	}
	cs2, ca2 := start, firstAccept

	for i := 0; i < min-1; i++ {
		cs, ca, err := c.compileNode(child, NoState, true)
		if err != nil {
			return NoState, NoState, err
		}
		c.b.Demote(ca2)
		c.b.Demote(cs)
		c.b.AddEps(ca2, cs)
		cs2, ca2 = cs, ca
	}
	minEnd := ca2
	accept := minEnd

	if max > min {
		cs, ca, err := c.compileNode(child, NoState, true)
		if err != nil {
			return NoState, NoState, err
		}
		c.b.Demote(ca2)
		c.b.AddEps(ca2, ca)
		cs2, ca2 = cs, ca
		accept = ca2

		for i := min; i < max-1; i++ {
			cs, ca, err := c.compileNode(child, NoState, true)
			if err != nil {
				return NoState, NoState, err
			}
			c.b.Demote(ca)
			c.b.Demote(cs2)
			c.b.AddEps(ca, cs2)
			c.b.AddEps(ca, accept)
			cs2, ca2 = cs, ca
		}
	}

	if ca2 != minEnd {
		c.b.Demote(cs2)
		c.b.Demote(minEnd)
		c.b.AddEps(minEnd, cs2)
	}

	return start, accept, nil
}
