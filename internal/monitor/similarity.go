package monitor

// similarity returns a ratio in [0, 1] measuring how alike two strings are:
// twice the number of matching characters divided by the total number of
// characters in both strings. Matching characters are found by recursively
// taking the longest contiguous common block, then matching to its left and
// right. Two empty strings are identical.
func similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	m := matchLen(a, b)
	return 2.0 * float64(m) / float64(len(a)+len(b))
}

func matchLen(a, b string) int {
	i, j, n := longestMatch(a, b)
	if n == 0 {
		return 0
	}
	return n + matchLen(a[:i], b[:j]) + matchLen(a[i+n:], b[j+n:])
}

// longestMatch finds the longest contiguous block common to a and b,
// preferring the earliest occurrence in a, then in b, on ties.
func longestMatch(a, b string) (besti, bestj, bestn int) {
	j2len := make(map[int]int)
	for i := 0; i < len(a); i++ {
		next := make(map[int]int)
		for j := 0; j < len(b); j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestn {
				besti, bestj, bestn = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestn
}
