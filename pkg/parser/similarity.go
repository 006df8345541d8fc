package parser

import "strings"

// sequenceRatio computes a SequenceMatcher-style similarity ratio: 2*M / T,
// where M is the number of matching characters found by recursively
// locating the longest matching block and recursing into the unmatched
// left/right remainders, and T is the combined length of both strings.
// See DESIGN.md for the stdlib-only justification.
func sequenceRatio(a, b string) float64 {
	if a == b {
		if len(a) == 0 {
			return 1.0
		}
	}
	ar, br := []rune(a), []rune(b)
	matches := matchingCharacters(ar, br)
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}
	return float64(2*matches) / float64(total)
}

// matchingCharacters counts matched characters between a and b using the
// same divide-and-conquer longest-matching-block recursion SequenceMatcher
// uses internally.
func matchingCharacters(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingCharacters(a[:i], b[:j]) +
		matchingCharacters(a[i+size:], b[j+size:])
}

// longestMatch finds the longest contiguous run shared between a and b,
// returning its start index in each and its length.
func longestMatch(a, b []rune) (aStart, bStart, size int) {
	// Index b's character positions for an O(len(a)*len(b)) scan (b2j in
	// SequenceMatcher's own implementation).
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	bestI, bestJ, bestSize := 0, 0, 0
	j2len := make(map[int]int)
	for i, ar := range a {
		newJ2len := make(map[int]int)
		for _, j := range b2j[ar] {
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				bestI, bestJ, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}
	return bestI, bestJ, bestSize
}

// fuzzyRatio computes a similarity ratio: exact match short-circuits to
// 1.0, otherwise a sequence-matcher ratio, boosted to at least 0.7 when
// one term contains the other as a substring.
func fuzzyRatio(a, b string) float64 {
	if strings.EqualFold(a, b) {
		return 1.0
	}
	al, bl := strings.ToLower(a), strings.ToLower(b)
	ratio := sequenceRatio(al, bl)
	if strings.Contains(al, bl) || strings.Contains(bl, al) {
		if ratio < 0.7 {
			ratio = 0.7
		}
	}
	return ratio
}
