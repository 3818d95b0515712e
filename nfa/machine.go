package nfa

import "github.com/backrex/backrex/internal/sparse"

// buildConfig holds the options a Compile call can be tuned with.
type buildConfig struct {
	PartialMatch bool
	MaxStates    int
}

func defaultBuildConfig() buildConfig {
	return buildConfig{PartialMatch: false, MaxStates: 0}
}

// BuildOption configures a Compile call, following the functional-options
// shape used throughout this module.
type BuildOption func(*buildConfig)

// WithPartialMatch toggles the self-loop extension that lets RunMachine
// behave as if the pattern were wrapped in ".*" on whichever end has no
// explicit anchor (spec's partial-match extension).
func WithPartialMatch(enabled bool) BuildOption {
	return func(c *buildConfig) { c.PartialMatch = enabled }
}

// WithMaxStates bounds the number of states Compile may allocate, surfaced
// as ErrTooComplex when exceeded. Zero (the default) means unbounded.
func WithMaxStates(n int) BuildOption {
	return func(c *buildConfig) { c.MaxStates = n }
}

// Machine is a compiled, immutable NFA program. RunMachine takes a private
// mutable copy of its states for each match attempt, so one Machine is safe
// to reuse across sequential match calls (though not across goroutines
// without external synchronization).
type Machine struct {
	states []State
	start  StateID
	accept StateID

	groupCount      int
	backrefsEnabled bool
	hasBackRefs     bool
	partialMatch    bool
}

// GroupCount returns the number of capturing groups the compiled pattern
// has, not counting the whole-match span.
func (m *Machine) GroupCount() int { return m.groupCount }

// CaptureRecord is the matched span of one capturing group: a half-open
// byte range [Start, End) into the input RunMachine was called with.
// Matched is false when the group's enclosing alternative was never taken.
type CaptureRecord struct {
	Start   int
	End     int
	Matched bool
}

// MatchResult is RunMachine's report: whether the pattern matched the full
// input, and (for a pattern with capturing groups) the last-iteration
// capture of each group in the order its opening parenthesis appears in
// the pattern.
type MatchResult struct {
	Matched  bool
	Captures []CaptureRecord
}

// RunMachine simulates m against input using epsilon-closure driven subset
// construction, per spec's execution algorithm. It clones m's compiled
// states before running so that back-reference materialization — which
// splices fresh states into the graph on the spot — never mutates m itself
// and never needs an undo path: the clone is simply discarded at the end of
// the call.
func RunMachine(m *Machine, input []byte) (*MatchResult, error) {
	states := cloneStates(m.states)
	b := &Builder{states: states}

	capacity := uint32(len(states)) + uint32(len(input))*uint32(m.groupCount+2) + 64
	r := &runner{
		b:         b,
		input:     input,
		captures:  make(map[int]CaptureRecord),
		openStart: make(map[int]int),
		visited:   sparse.NewSparseSet(capacity),
	}

	current := r.closure([]StateID{m.start})

	for pos := 0; pos < len(input); pos++ {
		ch := input[pos]

		for _, st := range current {
			s := b.State(st)
			if !s.IsUnitStart() {
				continue
			}
			visited := make([]bool, b.Len())
			if closureHasTrans(b.states, st, st, ch, visited) {
				for _, g := range s.GroupIndexes {
					r.openStart[g] = pos
				}
			}
		}

		// With no back-references in the pattern there are no Ref states to
		// special-case, so the tentative allowRef=false pass computes exactly
		// the same frontier as the real advance; skip the redundant closure
		// walk and reuse it (tree.HasBackRefs, threaded through as
		// m.hasBackRefs). When back-references are present the
		// allowRef=false pass runs first and the groups it closes are saved
		// before the real advance, since advance(..., true) materializes Ref
		// states in place from the captures recorded so far.
		nextNoRef := r.advance(current, ch, !m.hasBackRefs)
		closed := stateSet(nextNoRef)
		for _, st := range current {
			s := b.State(st)
			if !s.IsUnitEnd() || closed[st] {
				continue
			}
			for _, g := range s.GroupIndexes {
				if start, ok := r.openStart[g]; ok {
					r.captures[g] = CaptureRecord{Start: start, End: pos, Matched: true}
					delete(r.openStart, g)
				}
			}
		}

		nextFull := nextNoRef
		if m.hasBackRefs {
			nextFull = r.advance(current, ch, true)
		}

		current = nextFull
		if len(current) == 0 {
			break
		}
	}

	for _, st := range current {
		s := b.State(st)
		if !s.IsUnitEnd() {
			continue
		}
		for _, g := range s.GroupIndexes {
			if start, ok := r.openStart[g]; ok {
				r.captures[g] = CaptureRecord{Start: start, End: len(input), Matched: true}
				delete(r.openStart, g)
			}
		}
	}

	matched := stateSet(current)[m.accept]

	result := &MatchResult{Matched: matched}
	if m.groupCount > 0 {
		result.Captures = make([]CaptureRecord, m.groupCount)
		for i := 1; i <= m.groupCount; i++ {
			if rec, ok := r.captures[i]; ok {
				result.Captures[i-1] = rec
			}
		}
	}
	return result, nil
}

func cloneStates(states []State) []State {
	out := make([]State, len(states))
	copy(out, states)
	for i := range out {
		out[i].Eps = append([]StateID(nil), out[i].Eps...)
	}
	return out
}

func stateSet(ids []StateID) map[StateID]bool {
	out := make(map[StateID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// runner carries the per-match-attempt state: the mutable state clone,
// recorded captures, and provisional open-group starts.
type runner struct {
	b     *Builder
	input []byte

	captures  map[int]CaptureRecord
	openStart map[int]int

	visited *sparse.SparseSet
}

// closure computes the epsilon-closure of seeds using an explicit worklist,
// so deeply nested repetition doesn't grow the Go call stack.
func (r *runner) closure(seeds []StateID) []StateID {
	r.visited.Clear()
	var out []StateID
	stack := append([]StateID(nil), seeds...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r.visited.Contains(uint32(id)) {
			continue
		}
		r.visited.Insert(uint32(id))
		out = append(out, id)
		for _, e := range r.b.states[id].Eps {
			if !r.visited.Contains(uint32(e)) {
				stack = append(stack, e)
			}
		}
	}
	return out
}

// advance computes epsilon-closure(∪ trans[s][ch] : s ∈ current). When
// allowRef is true, a Ref state encountered along the way is materialized
// into a fresh literal chain on the spot (see materializeRef) before its
// transition is read; when false (the tentative pass used to decide
// whether a group has closed) Ref states are skipped outright, exactly as
// spec's "computed with back-refs disabled" step.
func (r *runner) advance(current []StateID, ch byte, allowRef bool) []StateID {
	var frontier []StateID
	for _, st := range current {
		s := r.b.State(st)
		if s.IsRef() {
			if !allowRef {
				continue
			}
			r.materializeRef(st)
			s = r.b.State(st)
		}
		if !s.Bytes.IsZero() && s.Bytes.Test(ch) {
			frontier = append(frontier, s.ByteTo)
		}
	}
	return r.closure(frontier)
}

// materializeRef splices a fresh chain of Norm states into the clone, one
// per byte of the group's captured text, terminating in an epsilon to the
// Ref state's original target. A group that never captured on this path
// (no CaptureRecord recorded for it yet) leaves st with no transition at
// all, so this path simply fails to advance rather than materializing
// against unset text.
func (r *runner) materializeRef(st StateID) {
	s := r.b.State(st)
	s.Flags &^= FlagRef

	rec, ok := r.captures[s.RefGroup]
	if !ok {
		s.Bytes = ByteSet{}
		s.Eps = nil
		return
	}

	target := s.RefTo
	text := r.input[rec.Start:rec.End]

	if len(text) == 0 {
		s.Bytes = ByteSet{}
		r.b.AddEps(st, target)
		return
	}

	cur := st
	for _, bt := range text {
		next := r.b.New(RoleNorm)
		var set ByteSet
		set.Set(bt)
		r.b.SetByte(cur, set, next)
		cur = next
	}
	r.b.AddEps(cur, target)
}

// closureHasTrans reports whether some state in the epsilon-closure of st —
// restricted to states whose parent_unit chain passes through parent — has
// a direct transition on ch, or is itself a Ref state (which is assumed to
// match optimistically for the purpose of deciding whether a group opens
// at this position). Grounded on IfStateClosureHasTrans.
func closureHasTrans(states []State, st, parent StateID, ch byte, visited []bool) bool {
	if visited[st] {
		return false
	}
	visited[st] = true

	s := &states[st]
	if s.IsRef() {
		return true
	}
	if !s.Bytes.IsZero() && s.Bytes.Test(ch) {
		return true
	}
	for _, e := range s.Eps {
		curParent := states[e].ParentUnit
		for curParent != NoState && curParent != parent {
			curParent = states[curParent].ParentUnit
		}
		if curParent == NoState {
			continue
		}
		if closureHasTrans(states, e, parent, ch, visited) {
			return true
		}
	}
	return false
}
