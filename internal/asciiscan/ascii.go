// Package asciiscan provides a byte-set membership scan used to fast-reject
// input before the NFA runs: IndexAny finds the first byte in a haystack
// that could possibly start a match, so a haystack containing none of a
// pattern's required leading bytes never reaches nfa.RunMachine at all.
package asciiscan

import "golang.org/x/sys/cpu"

// unrollThreshold is the haystack length, in bytes, above which the
// 8-wide unrolled scan pays for the extra bookkeeping it does relative to
// the straight-line scalar loop.
const unrollThreshold = 64

// IndexAny returns the index of the first byte in haystack for which
// set[b] is true, or -1 if no such byte exists. set is a 256-entry byte
// membership table, as produced by token.ExpandClass or built directly from
// a handful of literal bytes.
func IndexAny(haystack []byte, set [256]bool) int {
	if len(haystack) == 0 {
		return -1
	}
	if cpu.X86.HasAVX2 && len(haystack) >= unrollThreshold {
		return indexAnyUnrolled(haystack, set)
	}
	return indexAnyScalar(haystack, set)
}

func indexAnyScalar(haystack []byte, set [256]bool) int {
	for i, b := range haystack {
		if set[b] {
			return i
		}
	}
	return -1
}

// indexAnyUnrolled scans 8 bytes per iteration. It does not use actual AVX2
// vector instructions (this module has no assembly), but the HasAVX2 gate
// still picks a genuinely different, wider code path on the CPUs most
// likely to benefit from fewer loop-branch mispredictions per byte scanned.
func indexAnyUnrolled(haystack []byte, set [256]bool) int {
	n := len(haystack)
	i := 0
	for ; i+8 <= n; i += 8 {
		if set[haystack[i]] {
			return i
		}
		if set[haystack[i+1]] {
			return i + 1
		}
		if set[haystack[i+2]] {
			return i + 2
		}
		if set[haystack[i+3]] {
			return i + 3
		}
		if set[haystack[i+4]] {
			return i + 4
		}
		if set[haystack[i+5]] {
			return i + 5
		}
		if set[haystack[i+6]] {
			return i + 6
		}
		if set[haystack[i+7]] {
			return i + 7
		}
	}
	for ; i < n; i++ {
		if set[haystack[i]] {
			return i
		}
	}
	return -1
}
