package token

import "fmt"

// ExtractUnit locates the rightmost atomic sub-unit of pattern[start:end]
// (spec §4.1's extract_unit). It returns:
//
//   - unitStart, unitEnd: the half-open range of the unit's own text. For a
//     bracketed class this includes the brackets; for a parenthesized group
//     it is the *interior* only (both -1 for an empty group "()"); for a
//     plain byte or single escape it is just that byte (or two, if escaped).
//   - leftEnd: the exclusive end of the remaining range [start, leftEnd)
//     that the caller should recursively parse as the left sibling.
//   - afterUnit: the index immediately after the unit's outer text (may
//     land on a trailing quantifier within [afterUnit, end)).
//   - isParenUnit: true if the unit came from a parenthesized group,
//     meaning the caller should allocate a capture index for it.
func ExtractUnit(pattern []byte, start, end int, backrefsEnabled bool) (unitStart, unitEnd, leftEnd, afterUnit int, isParenUnit bool, err error) {
	p := end - 1
	if p < start {
		return 0, 0, 0, 0, false, newErr(pattern, start, ErrMisplacedMeta, "empty expression")
	}

	ec := pattern[p]

	if (ec == '*' || ec == '+' || ec == '?') && !IsEscaped(pattern, start, p) {
		p--
		if p < start {
			return 0, 0, 0, 0, false, newErr(pattern, end-1, ErrMisplacedMeta, "quantifier with no preceding unit")
		}
		ec = pattern[p]
	}

	if (ec == ')' || ec == ']' || ec == '}') && !IsEscaped(pattern, start, p) {
		var opener byte
		switch ec {
		case ']':
			opener = '['
		case ')':
			opener = '('
		default:
			opener = '{'
		}

		openIdx := -1
		depth := 1
		for q := p - 1; q >= start; q-- {
			if IsEscaped(pattern, start, q) {
				continue
			}
			switch pattern[q] {
			case ec:
				depth++
			case opener:
				depth--
				if depth == 0 {
					openIdx = q
				}
			}
			if openIdx >= 0 {
				break
			}
		}
		if openIdx < 0 {
			return 0, 0, 0, 0, false, newErr(pattern, p, ErrUnmatchedBracket,
				fmt.Sprintf("unmatched %q", string(rune(ec))))
		}

		switch ec {
		case ']':
			return openIdx, p + 1, openIdx, p + 1, false, nil

		case '}':
			innerStart, innerEnd, innerLeftEnd, innerAfter, innerIsParen, ierr := ExtractUnit(pattern, start, openIdx, backrefsEnabled)
			if ierr != nil {
				return 0, 0, 0, 0, false, ierr
			}
			if innerAfter != openIdx {
				return 0, 0, 0, 0, false, newErr(pattern, openIdx, ErrMisplacedMeta, "invalid expression before {}")
			}
			return innerStart, innerEnd, innerLeftEnd, innerAfter, innerIsParen, nil

		default: // ')'
			unitStart = openIdx + 1
			unitEnd = p
			if unitEnd <= unitStart {
				unitStart, unitEnd = -1, -1 // empty group "()"
			}
			return unitStart, unitEnd, openIdx, p + 1, true, nil
		}
	}

	if (ec == '(' || ec == '{' || ec == '[' || ec == '|' ||
		ec == '*' || ec == '?' || ec == '+') && !IsEscaped(pattern, start, p) {
		return 0, 0, 0, 0, false, newErr(pattern, p, ErrMisplacedMeta, "invalid occurrence of meta-character")
	}

	if IsEscaped(pattern, start, p) {
		if !CanEscape(ec, backrefsEnabled) {
			return 0, 0, 0, 0, false, newErr(pattern, p, ErrInvalidEscape, "invalid escape character")
		}
		return p - 1, p + 1, p - 1, p + 1, false, nil
	}
	return p, p + 1, p, p + 1, false, nil
}
