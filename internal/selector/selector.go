// Package selector parses position expressions such as "1,3-5,8".
package selector

import (
	"sort"
	"strconv"
	"strings"
)

// Selection holds the resolved 0-based indices in ascending order along
// with every token that was malformed or fell outside the list.
type Selection struct {
	Indices []int
	Ignored []string
}

func (s Selection) Empty() bool { return len(s.Indices) == 0 }

// Descending returns the indices from highest to lowest, the order in which
// removals must be applied.
func (s Selection) Descending() []int {
	out := make([]int, len(s.Indices))
	for i, idx := range s.Indices {
		out[len(s.Indices)-1-i] = idx
	}
	return out
}

// Parse resolves expr against a list of n items. Tokens are separated by
// commas or whitespace. A range a-b is inclusive; b-a is treated as a-b.
// Positions outside [1,n] are dropped silently into Ignored.
func Parse(expr string, n int) Selection {
	seen := make(map[int]bool)
	var out Selection
	tokens := strings.FieldsFunc(expr, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	for _, tok := range tokens {
		lo, hi, ok := parseToken(tok)
		if !ok {
			out.Ignored = append(out.Ignored, tok)
			continue
		}
		// Only the part of the range inside [1,n] is walked.
		lo = max(lo, 1)
		hi = min(hi, n)
		if lo > hi {
			out.Ignored = append(out.Ignored, tok)
			continue
		}
		for pos := lo; pos <= hi; pos++ {
			if !seen[pos-1] {
				seen[pos-1] = true
				out.Indices = append(out.Indices, pos-1)
			}
		}
	}
	sort.Ints(out.Indices)
	return out
}

func parseToken(tok string) (int, int, bool) {
	if a, b, found := strings.Cut(tok, "-"); found {
		lo, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return 0, 0, false
		}
		hi, err := strconv.Atoi(strings.TrimSpace(b))
		if err != nil {
			return 0, 0, false
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo, hi, true
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, 0, false
	}
	return v, v, true
}
