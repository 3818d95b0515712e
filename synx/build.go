package synx

import "github.com/backrex/backrex/token"

// Build parses pattern into a syntax tree. backRefsEnabled controls whether
// \0..\99 are recognized as back-references (per token.ClassifyToken) or
// rejected as an unsupported escape.
func Build(pattern []byte, backRefsEnabled bool) (*Tree, error) {
	t := &Tree{Pattern: pattern, BackRefsEnabled: backRefsEnabled}
	b := &builder{tree: t}

	root, err := b.alt(0, len(pattern))
	if err != nil {
		return nil, err
	}
	t.Root = root
	t.GroupCount = b.groupCounter
	return t, nil
}

type builder struct {
	tree         *Tree
	groupCounter int
}

// alt splits [start, end) on the first top-level (paren-depth zero),
// unescaped '|' and recurses; with no such '|' it falls through to concat.
func (b *builder) alt(start, end int) (*Node, error) {
	depth := 0
	splitAt := -1
	for p := start; p < end; p++ {
		if token.IsEscaped(b.tree.Pattern, start, p) {
			continue
		}
		switch b.tree.Pattern[p] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, newErr(b.tree.Pattern, p, ErrParenMismatch, "parenthesis not matched")
			}
		case '|':
			if depth == 0 {
				splitAt = p
			}
		}
		if splitAt >= 0 {
			break
		}
	}

	if splitAt < 0 {
		return b.concat(start, end)
	}

	left, err := b.concat(start, splitAt)
	if err != nil {
		return nil, err
	}
	right, err := b.alt(splitAt+1, end)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindOr, Left: left, Right: right}, nil
}

// concat peels the rightmost atomic unit off [start, end), recurses on
// what's left of it, and wraps the result with any trailing quantifier.
func (b *builder) concat(start, end int) (*Node, error) {
	if start >= end {
		return &Node{Kind: KindEmpty}, nil
	}

	if kind, ok := token.ClassifyToken(b.tree.Pattern, start, end, b.tree.BackRefsEnabled); ok {
		return b.leaf(kind, start, end)
	}

	us, ue, le, au, isParen, err := token.ExtractUnit(b.tree.Pattern, start, end, b.tree.BackRefsEnabled)
	if err != nil {
		return nil, err
	}

	var left *Node
	if le > start {
		left, err = b.concat(start, le)
		if err != nil {
			return nil, err
		}
	}

	var right *Node
	if isParen {
		b.groupCounter++
		groupIdx := b.groupCounter
		if us < 0 {
			right = &Node{Kind: KindEmpty}
		} else {
			right, err = b.alt(us, ue)
			if err != nil {
				return nil, err
			}
		}
		// A node can already carry outer groups' indexes here: concentric
		// parens with nothing else at that syntax level ("((a))") reuse the
		// same physical node for every layer's content, so each layer's
		// index is appended rather than replacing the inner layer's.
		right.GroupIndexes = append(right.GroupIndexes, groupIdx)
	} else {
		right, err = b.concat(us, ue)
		if err != nil {
			return nil, err
		}
	}

	if au < end {
		min, max, qerr := b.quantifier(au, end)
		if qerr != nil {
			return nil, qerr
		}
		right = &Node{Kind: KindStar, Left: right, Min: min, Max: max}
	}

	if left == nil {
		return right, nil
	}
	return &Node{Kind: KindConcat, Left: left, Right: right}, nil
}

// quantifier parses exactly one repeat suffix occupying [at, end) — '*',
// '+', '?', or a '{m,n}' consumed in full by token.ExtractRepeat.
func (b *builder) quantifier(at, end int) (min, max int, err error) {
	pattern := b.tree.Pattern
	if token.IsEscaped(pattern, at, at) {
		return 0, 0, newErr(pattern, at, token.ErrMisplacedMeta, "invalid occurrence of meta-character")
	}

	switch pattern[at] {
	case '*':
		min, max = 0, token.Unbounded
	case '+':
		min, max = 1, token.Unbounded
	case '?':
		min, max = 0, 1
	case '{':
		var repEnd int
		min, max, repEnd, err = token.ExtractRepeat(pattern, at, end)
		if err != nil {
			return 0, 0, err
		}
		if repEnd != end {
			return 0, 0, newErr(pattern, repEnd, token.ErrMisplacedMeta, "unexpected text after repeat count")
		}
		return min, max, nil
	default:
		return 0, 0, newErr(pattern, at, token.ErrMisplacedMeta, "unexpected character after unit")
	}

	if at+1 != end {
		return 0, 0, newErr(pattern, at+1, token.ErrMisplacedMeta, "multiple repeat operators")
	}
	return min, max, nil
}

func (b *builder) leaf(kind token.Kind, start, end int) (*Node, error) {
	n := &Node{Kind: KindLeaf, LeafKind: kind, Start: start, End: end}

	switch kind {
	case token.KindHead:
		b.tree.HasHead = true
	case token.KindTail:
		b.tree.HasTail = true
	case token.KindBackRef:
		ref := parseBackRefNumber(b.tree.Pattern, start, end)
		// Back-reference numbers are 0-based (spec §3: groups are numbered
		// from 0 in the order their '(' is encountered), but internal
		// GroupIndex allocation is 1-based, so \k refers to the (k+1)-th
		// group opened so far.
		if ref+1 > b.groupCounter {
			return nil, newErr(b.tree.Pattern, start, token.ErrBackRefOutOfRange,
				"back-reference number out of range")
		}
		n.RefGroup = ref + 1
		b.tree.HasBackRefs = true
	}

	return n, nil
}

// parseBackRefNumber reads the decimal group number out of a "\k" or "\kk"
// token (pattern[start:end], as classified by token.ClassifyToken).
func parseBackRefNumber(pattern []byte, start, end int) int {
	digits := pattern[start+1 : end]
	n := 0
	for _, d := range digits {
		n = n*10 + int(d-'0')
	}
	return n
}
