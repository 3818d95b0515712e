package token

// ExpandClass expands a bracketed class pattern[start:end] (including the
// brackets, as returned by ExtractUnit for a KindCharClass unit) into a
// 256-entry membership table: members[b] is true iff byte b is matched by
// the class. A leading '^' negates the table, complemented over bytes
// 1..253, so a negated class never contains 0, token.Epsilon (254) or
// token.RefMeta (255).
func ExpandClass(pattern []byte, start, end int) (members [256]bool, err error) {
	p := start + 1
	closeAt := end - 1

	negate := false
	if p < closeAt && pattern[p] == '^' {
		negate = true
		p++
	}

	var set [256]bool
	var prevByte byte
	havePrev := false
	pendingDash := false

	for p < closeAt {
		c := pattern[p]

		if c == '\\' && p+1 < closeAt {
			if pendingDash {
				return members, newErr(pattern, p, ErrInvertedRange, "range endpoint cannot be a character class")
			}
			expanded := ExpandEscape(pattern[p+1])
			for _, b := range expanded {
				set[b] = true
			}
			havePrev = len(expanded) == 1
			if havePrev {
				prevByte = expanded[0]
			}
			p += 2
			continue
		}

		if c == '-' && havePrev && !pendingDash && p+1 < closeAt {
			pendingDash = true
			p++
			continue
		}

		if pendingDash {
			if c < prevByte {
				return members, newErr(pattern, p, ErrInvertedRange, "range values reversed")
			}
			for b := int(prevByte); b <= int(c); b++ {
				set[byte(b)] = true
			}
			pendingDash = false
			havePrev = false
			p++
			continue
		}

		set[c] = true
		prevByte, havePrev = c, true
		p++
	}

	if pendingDash {
		// trailing '-' with nothing after it: literal.
		set['-'] = true
	}

	if !negate {
		return set, nil
	}
	for b := 1; b <= 253; b++ {
		members[b] = !set[byte(b)]
	}
	return members, nil
}

// ExpandEscape returns the set of literal bytes a single-character escape
// \c stands for. \s is a single space character (not a whitespace class —
// this matches the original tokenizer's ConstructEscapeString verbatim,
// not the broader \s convention other regex engines use), \w is the ASCII
// letters, \d is the decimal digits; anything else (including
// meta-characters and the back-slash itself) is just that one literal byte.
func ExpandEscape(c byte) []byte {
	switch c {
	case 's':
		return []byte{' '}
	case 'w':
		return asciiLetters
	case 'd':
		return asciiDigits
	default:
		return []byte{c}
	}
}

var asciiLetters = func() []byte {
	b := make([]byte, 0, 52)
	for c := byte('a'); c <= 'z'; c++ {
		b = append(b, c)
	}
	for c := byte('A'); c <= 'Z'; c++ {
		b = append(b, c)
	}
	return b
}()

var asciiDigits = func() []byte {
	b := make([]byte, 0, 10)
	for c := byte('0'); c <= '9'; c++ {
		b = append(b, c)
	}
	return b
}()
