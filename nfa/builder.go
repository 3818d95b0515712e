package nfa

import "github.com/backrex/backrex/internal/conv"

// Builder is the low-level arena used while compiling a syntax tree: it
// hands out fresh StateIDs (recycling released ones) and provides the small
// set of mutations compilation needs. Compiler is the only normal caller;
// RunMachine also wraps its per-call clone of the states in a Builder to
// allocate the states of a back-reference materialization (see machine.go).
type Builder struct {
	states []State
	free   []StateID
}

// NewBuilder creates an empty arena.
func NewBuilder() *Builder {
	return &Builder{states: make([]State, 0, 32)}
}

// New allocates a state with the given role, reusing a released slot when
// one is available.
func (b *Builder) New(role StateRole) StateID {
	if n := len(b.free); n > 0 {
		id := b.free[n-1]
		b.free = b.free[:n-1]
		b.states[id] = newState(id, role)
		return id
	}
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, newState(id, role))
	return id
}

// Release resets a state to RoleNone and returns its slot to the free list.
// Nothing in this module calls it: RunMachine discards its per-call clone
// instead of releasing materialized states one by one.
func (b *Builder) Release(id StateID) {
	b.states[id] = newState(id, RoleNone)
	b.free = append(b.free, id)
}

// State returns a pointer to the state for in-place mutation.
func (b *Builder) State(id StateID) *State {
	return &b.states[id]
}

// Len returns the number of allocated slots (including released ones).
func (b *Builder) Len() int {
	return len(b.states)
}

// AddEps adds an epsilon edge from -> to, skipping it if already present.
func (b *Builder) AddEps(from, to StateID) {
	s := &b.states[from]
	for _, e := range s.Eps {
		if e == to {
			return
		}
	}
	s.Eps = append(s.Eps, to)
}

// SetByte installs the single byte-labeled transition for a state.
func (b *Builder) SetByte(id StateID, set ByteSet, to StateID) {
	s := &b.states[id]
	s.Bytes = set
	s.ByteTo = to
}

// SetRef installs a back-reference meta-transition: matching group
// groupIndex's captured text advances to `to`.
func (b *Builder) SetRef(id StateID, to StateID, groupIndex int) {
	s := &b.states[id]
	s.Flags |= FlagRef
	s.RefTo = to
	s.RefGroup = groupIndex
}

// SetParent records a state's enclosing capturing group's start state, but
// only the first time (mirrors the original's "if unset" guard so a state
// shared by a unit wrapper and its child isn't overwritten post hoc).
func (b *Builder) SetParent(id, parent StateID) {
	s := &b.states[id]
	if s.ParentUnit == NoState {
		s.ParentUnit = parent
	}
}

// MarkFlag ORs flag into a state's flag set.
func (b *Builder) MarkFlag(id StateID, flag StateFlag) {
	b.states[id].Flags |= flag
}

// Demote resets a state's role to RoleNorm, used when a sub-expression's
// start/accept states stop being externally meaningful once wrapped by an
// enclosing construct (a capturing group, an Or branch folded into its
// sibling's frame).
func (b *Builder) Demote(id StateID) {
	b.states[id].Role = RoleNorm
}

// Snapshot copies the arena's states into an independent slice, used by
// Machine to build the immutable compiled program.
func (b *Builder) Snapshot() []State {
	out := make([]State, len(b.states))
	copy(out, b.states)
	for i := range out {
		out[i].Eps = append([]StateID(nil), out[i].Eps...)
	}
	return out
}
