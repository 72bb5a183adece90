package resolver

import "sort"

// levenshtein computes the classic edit distance between a and b using a
// two-row dynamic-programming table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i

		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}

		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// suggest returns up to three candidate names within Levenshtein distance 2
// of name, ranked by distance ascending (§4.3's fuzzy suggestion rule).
func suggest(name string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}

	var hits []scored

	for _, c := range candidates {
		if c == name {
			continue
		}

		d := levenshtein(name, c)
		if d <= 2 {
			hits = append(hits, scored{c, d})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	if len(hits) > 3 {
		hits = hits[:3]
	}

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}

	return out
}
