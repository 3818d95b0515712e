// Package backrex is a small, from-scratch regular-expression engine: a
// hand-rolled tokenizer (package token) feeds a recursive-descent
// syntax-tree builder (package synx), which is compiled into a
// back-reference-capable NFA (package nfa) and simulated against input
// bytes.
//
// Unlike Go's stdlib regexp, backrex supports back-references (\0, \1, ...
// \99) by materializing a matched group's captured text as a fresh state
// chain at match time. In exchange it gives up Unicode classes (the engine
// is 8-bit byte-indexed), look-around, named groups, non-greedy
// quantifiers, and guaranteed-linear-time matching: a pattern with
// back-references can, like Perl's, exhibit exponential worst-case
// behavior.
//
// Basic usage:
//
//	re, err := backrex.Compile(`(ab)+\0`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if re.MatchString("ababab") {
//	    fmt.Println("matched")
//	}
//
// A Regex value is not safe for concurrent use: Match caches the most
// recent match's capture groups on the Regex itself, and the underlying
// nfa.Machine takes a fresh scratch clone per call but that clone is built
// from shared compiled state that a concurrent Compile is never run
// against twice, so plain concurrent Match calls on one *Regex are safe
// from the NFA's point of view — only the cached Groups() result is not.
// Compile one Regex per goroutine, or guard Groups() with a mutex.
package backrex

import (
	"github.com/backrex/backrex/nfa"
	"github.com/backrex/backrex/prefilter"
	"github.com/backrex/backrex/synx"
)

// Config controls pattern compilation. The zero value is not valid; use
// DefaultConfig and override individual fields.
type Config struct {
	// PartialMatch makes Match report whether the pattern occurs anywhere
	// in the input, as if the pattern were wrapped in ".*" on whichever
	// end has no explicit '^'/'$' anchor (spec's partial-match extension).
	// When false, the whole input must match the pattern exactly.
	PartialMatch bool

	// BackRefsEnabled turns on \0..\99 back-reference syntax. When false,
	// a backslash-digit escape is rejected as an invalid escape character.
	BackRefsEnabled bool

	// MaxStates bounds the number of NFA states Compile may allocate for
	// one pattern, surfaced as nfa.ErrTooComplex when exceeded. Zero (the
	// default) means unbounded.
	MaxStates int
}

// DefaultConfig returns the configuration Compile and MustCompile use:
// partial (unanchored) matching and back-references both enabled, no
// state-count ceiling.
func DefaultConfig() Config {
	return Config{PartialMatch: true, BackRefsEnabled: true}
}

// Group is one capturing group's result from the most recent Match call:
// the half-open byte range [Start, End) it matched, or Matched == false if
// the group's enclosing alternative was never taken. Groups are numbered
// from 0 in the order their opening parenthesis appears in the pattern —
// the same numbering \0, \1, ... back-reference syntax uses.
type Group = nfa.CaptureRecord

// Regex is a compiled pattern.
type Regex struct {
	machine *nfa.Machine
	pattern string
	pre     prefilter.Literal

	lastGroups  []Group
	lastMatched bool
}

// Compile compiles pattern with DefaultConfig. Returns a *token.ParseError,
// *synx.TreeError, or *nfa.CompileError (all wrapping a stable sentinel,
// recoverable via errors.Is) if the pattern does not parse or exceeds a
// compilation limit.
//
// Example:
//
//	re, err := backrex.Compile(`a(bc)(\0df)(g\1)e`)
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile compiles pattern with DefaultConfig and panics if it fails.
// Intended for patterns known to be valid at compile time, e.g. package-
// level vars.
//
// Example:
//
//	var timestamp = backrex.MustCompile(`\d{4}-\d{2}-\d{2}`)
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("backrex: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles pattern with an explicit Config, for callers
// that need anchored-only matching, back-references disabled, or a
// state-count ceiling.
//
// Example:
//
//	cfg := backrex.DefaultConfig()
//	cfg.PartialMatch = false // require a full-string match
//	re, err := backrex.CompileWithConfig(`\d+`, cfg)
func CompileWithConfig(pattern string, cfg Config) (*Regex, error) {
	tree, err := synx.Build([]byte(pattern), cfg.BackRefsEnabled)
	if err != nil {
		return nil, err
	}

	opts := []nfa.BuildOption{nfa.WithPartialMatch(cfg.PartialMatch)}
	if cfg.MaxStates > 0 {
		opts = append(opts, nfa.WithMaxStates(cfg.MaxStates))
	}

	m, err := nfa.Compile(tree, opts...)
	if err != nil {
		return nil, err
	}

	return &Regex{
		machine: m,
		pattern: pattern,
		pre:     prefilter.Build(tree),
	}, nil
}

// Match reports whether b matches the pattern (per the Config.PartialMatch
// semantics it was compiled with) and records any capture groups for a
// subsequent call to Groups.
//
// Example:
//
//	re := backrex.MustCompile(`[abc]+\d`)
//	if re.Match([]byte("abc3")) {
//	    fmt.Println("matched")
//	}
func (r *Regex) Match(b []byte) bool {
	if r.pre != nil && !r.pre.MayMatch(b) {
		r.lastMatched = false
		r.lastGroups = nil
		return false
	}

	result, err := nfa.RunMachine(r.machine, b)
	if err != nil {
		r.lastMatched = false
		r.lastGroups = nil
		return false
	}

	r.lastMatched = result.Matched
	r.lastGroups = result.Captures
	return result.Matched
}

// MatchString is Match for a string input.
//
// Example:
//
//	re := backrex.MustCompile(`^\w+@\w+$`)
//	re.MatchString("user@host")
func (r *Regex) MatchString(s string) bool {
	return r.Match([]byte(s))
}

// Groups returns the capture groups recorded by the most recent Match or
// MatchString call, in the order described by Group's doc comment. It
// returns nil if that call did not match, or if the pattern has no
// capturing groups.
//
// Example:
//
//	re := backrex.MustCompile(`(\w+)@(\w+)`)
//	re.MatchString("user@host")
//	for i, g := range re.Groups() {
//	    fmt.Println(i, g.Start, g.End)
//	}
func (r *Regex) Groups() []Group {
	if !r.lastMatched {
		return nil
	}
	return r.lastGroups
}

// NumSubexp returns the number of capturing groups in the pattern.
func (r *Regex) NumSubexp() int {
	return r.machine.GroupCount()
}

// String returns the source pattern text Compile was called with.
func (r *Regex) String() string {
	return r.pattern
}
