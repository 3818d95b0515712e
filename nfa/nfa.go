// Package nfa builds and runs the byte-level NFA that backs a compiled
// pattern. Unlike a conventional Thompson construction, states here can be
// mutated at match time: a back-reference state is materialized into a
// disposable literal chain the moment the group it refers to has captured
// text, and discarded at the end of the match attempt (see machine.go).
//
// A State plays one of three roles (start/accept/norm) in the tree it was
// built from, carries a handful of orthogonal flags (anchor markers, capture
// group boundaries, back-reference), and has at most one byte-labeled
// transition plus any number of epsilon transitions. This is a deliberately
// narrower shape than a general byte-range NFA: every leaf produced by
// package synx has exactly one destination state, so "which bytes" and
// "go where" factor cleanly into a 256-bit set and a single target.
package nfa

import (
	"fmt"
	"math"
)

// StateID uniquely identifies a state within a Builder or Machine's arena.
type StateID uint32

// NoState is the sentinel for "no state" (an absent parent, an empty
// back-reference target, and so on).
const NoState StateID = math.MaxUint32

// StateRole is the structural role a state plays in the compiled tree: the
// entry point or exit point of some sub-expression, or an interior state
// with no special role.
type StateRole uint8

const (
	RoleNone StateRole = iota
	RoleStart
	RoleAccept
	RoleNorm
)

func (r StateRole) String() string {
	switch r {
	case RoleStart:
		return "start"
	case RoleAccept:
		return "accept"
	case RoleNorm:
		return "norm"
	default:
		return "none"
	}
}

// StateFlag holds orthogonal markers layered on top of a state's role.
type StateFlag uint8

const (
	// FlagHead marks the entry state of a '^' anchor.
	FlagHead StateFlag = 1 << iota
	// FlagTail marks the exit state of a '$' anchor.
	FlagTail
	// FlagRef marks a state whose single transition is a back-reference
	// meta-transition, materialized at match time (see machine.go).
	FlagRef
	// FlagUnitStart marks the entry boundary of a capturing group.
	FlagUnitStart
	// FlagUnitEnd marks the exit boundary of a capturing group.
	FlagUnitEnd
)

func (f StateFlag) has(bit StateFlag) bool { return f&bit != 0 }

// ByteSet is a 256-bit membership set over byte values, used as the single
// transition guard a state needs (a literal byte, a class, \s/\w/\d, or the
// wildcard all compress to "which bytes move me forward").
type ByteSet [4]uint64

// Set adds b to the set.
func (s *ByteSet) Set(b byte) {
	s[b/64] |= 1 << (b % 64)
}

// SetRange adds every byte in [lo, hi] to the set.
func (s *ByteSet) SetRange(lo, hi byte) {
	for b := int(lo); b <= int(hi); b++ {
		s.Set(byte(b))
	}
}

// Test reports whether b is a member of the set.
func (s ByteSet) Test(b byte) bool {
	return s[b/64]&(1<<(b%64)) != 0
}

// IsZero reports whether the set has no members.
func (s ByteSet) IsZero() bool {
	return s == ByteSet{}
}

// ByteSetFromTable converts a 256-entry membership table, as produced by
// token.ExpandClass, into a ByteSet.
func ByteSetFromTable(table [256]bool) ByteSet {
	var s ByteSet
	for b := 0; b < 256; b++ {
		if table[b] {
			s.Set(byte(b))
		}
	}
	return s
}

// State is one node of the NFA's state graph. Which fields are meaningful
// depends on Flags: a plain state has only Bytes/ByteTo or Eps populated; a
// FlagRef state instead uses RefTo/RefGroup and has its byte/epsilon
// transitions rebuilt and torn down around each match attempt.
type State struct {
	ID           StateID
	Role         StateRole
	Flags        StateFlag
	ParentUnit   StateID
	GroupIndexes []int

	Bytes  ByteSet
	ByteTo StateID

	Eps []StateID

	RefTo    StateID
	RefGroup int
}

func newState(id StateID, role StateRole) State {
	return State{
		ID:         id,
		Role:       role,
		ParentUnit: NoState,
		ByteTo:     NoState,
		RefTo:      NoState,
	}
}

// IsHead reports whether this is a '^' anchor state.
func (s *State) IsHead() bool { return s.Flags.has(FlagHead) }

// IsTail reports whether this is a '$' anchor state.
func (s *State) IsTail() bool { return s.Flags.has(FlagTail) }

// IsRef reports whether this state's transition is a back-reference
// meta-transition rather than an ordinary byte/epsilon edge.
func (s *State) IsRef() bool { return s.Flags.has(FlagRef) }

// IsUnitStart reports whether this state is a capturing group's entry
// boundary, in which case GroupIndexes names the group or groups (more than
// one when concentric parens share this boundary, e.g. "((a))").
func (s *State) IsUnitStart() bool { return s.Flags.has(FlagUnitStart) }

// IsUnitEnd reports whether this state is a capturing group's exit
// boundary, in which case GroupIndexes names the group or groups (more than
// one when concentric parens share this boundary, e.g. "((a))").
func (s *State) IsUnitEnd() bool { return s.Flags.has(FlagUnitEnd) }

func (s *State) String() string {
	switch {
	case s.IsRef():
		return fmt.Sprintf("State(%d, ref -> group %d, continue %d)", s.ID, s.RefGroup, s.RefTo)
	case !s.Bytes.IsZero():
		return fmt.Sprintf("State(%d, byte -> %d, eps %v)", s.ID, s.ByteTo, s.Eps)
	default:
		return fmt.Sprintf("State(%d, %s, eps %v)", s.ID, s.Role, s.Eps)
	}
}
