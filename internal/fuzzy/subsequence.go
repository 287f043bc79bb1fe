package fuzzy

import (
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// fieldSource exposes every name and translation as one fuzzy.Source.
// Entry 2i is the name of tag i and entry 2i+1 its translation.
type fieldSource struct {
	ix *Index
}

func (s fieldSource) String(i int) string {
	t := s.ix.tags[i/2]
	if i%2 == 0 {
		return t.Name
	}
	return t.Translation
}

func (s fieldSource) Len() int { return 2 * len(s.ix.tags) }

func (ix *Index) searchSubsequence(query string) []types.Tag {
	matches := fuzzy.FindFrom(query, fieldSource{ix: ix})

	// Keep the best field score per tag.
	best := make(map[int]int, len(matches))
	for _, m := range matches {
		tag := m.Index / 2
		if s, ok := best[tag]; !ok || m.Score > s {
			best[tag] = m.Score
		}
	}

	hits := make([]hit, 0, len(best))
	for tag, s := range best {
		hits = append(hits, hit{idx: tag, score: float64(s)})
	}
	// Higher is better here; index order breaks ties.
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].idx < hits[b].idx
	})
	return ix.collect(hits)
}
