// Package token implements the pattern tokenizer: classification of byte
// ranges of a regex pattern into atomic tokens, extraction of the rightmost
// sub-unit, repetition-count parsing, and character-class expansion.
//
// The tokenizer never builds a tree; it only answers questions about byte
// ranges of the pattern. It is consulted by package synx while building the
// syntax tree.
package token

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. All tokenizer failures wrap one of these via
// ParseError so callers can errors.Is against a stable category while still
// getting a position and message for the human-readable report.
var (
	// ErrUnmatchedBracket indicates a [...], (...), or {...} with no
	// matching opener or closer.
	ErrUnmatchedBracket = errors.New("unmatched bracket")

	// ErrInvalidEscape indicates a backslash-escape of a character that
	// cannot legally be escaped.
	ErrInvalidEscape = errors.New("invalid escape character")

	// ErrInvalidRepeat indicates a malformed {m,n} repetition count.
	ErrInvalidRepeat = errors.New("invalid repeat count")

	// ErrInvertedRange indicates a class range a-z with a > z.
	ErrInvertedRange = errors.New("range values reversed")

	// ErrMisplacedMeta indicates a meta-character in a position where no
	// atomic token or unit can start or end.
	ErrMisplacedMeta = errors.New("misplaced meta-character")

	// ErrBackRefOutOfRange indicates \k referencing a group that has not
	// been opened yet.
	ErrBackRefOutOfRange = errors.New("back-reference out of range")
)

// ParseError is the one error kind the engine raises for pattern
// compilation failures (spec §7). It carries the offending byte position
// and a one-line excerpt of the pattern around it.
type ParseError struct {
	Pos     int
	Message string
	Err     error
	Pattern []byte
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Pattern == nil {
		return fmt.Sprintf("regex: %s at position %d", e.Message, e.Pos)
	}
	return fmt.Sprintf("regex: %s at position %d (near %q)", e.Message, e.Pos, excerpt(e.Pattern, e.Pos))
}

// Unwrap returns the underlying sentinel error, so errors.Is(err,
// token.ErrUnmatchedBracket) works regardless of the specific message.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// excerpt returns up to 8 bytes on either side of pos for error reporting.
func excerpt(pattern []byte, pos int) []byte {
	lo := pos - 8
	if lo < 0 {
		lo = 0
	}
	hi := pos + 8
	if hi > len(pattern) {
		hi = len(pattern)
	}
	return pattern[lo:hi]
}

// newErr builds a ParseError rooted at one of the sentinels above.
func newErr(pattern []byte, pos int, sentinel error, message string) *ParseError {
	return &ParseError{Pos: pos, Message: message, Err: sentinel, Pattern: pattern}
}
