package fuzzy

import "math"

// score returns the best approximate-substring score of query in text:
// the minimum over start offsets s and end offsets e of
//
//	editDistance(query, text[s:e])/len(query) + s/distance
//
// An empty text scores 1 for any non-empty query. Offsets past
// distance can only add more than a whole query's worth of errors, so
// the scan stops there.
func score(query, text []rune, distance int) float64 {
	m := len(query)
	if m == 0 {
		return 0
	}

	maxStart := len(text)
	if distance <= 0 {
		maxStart = 0
	} else if distance < maxStart {
		maxStart = distance
	}

	best := math.Inf(1)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for s := 0; s <= maxStart; s++ {
		penalty := 0.0
		if s > 0 {
			penalty = float64(s) / float64(distance)
		}
		if penalty >= best {
			break
		}

		// Column for the empty substring text[s:s].
		for i := range prev {
			prev[i] = i
		}
		minErr := prev[m]

		for j := s; j < len(text); j++ {
			cur[0] = j - s + 1
			for i := 1; i <= m; i++ {
				cost := 1
				if query[i-1] == text[j] {
					cost = 0
				}
				cur[i] = min(prev[i-1]+cost, prev[i]+1, cur[i-1]+1)
			}
			if cur[m] < minErr {
				minErr = cur[m]
			}
			prev, cur = cur, prev
			// Every later end offset adds at least one unmatched rune once
			// the substring is longer than query plus its best error count.
			if j-s+1 >= m+minErr {
				break
			}
		}

		if sc := float64(minErr)/float64(m) + penalty; sc < best {
			best = sc
		}
		if best == 0 {
			break
		}
	}
	return best
}
