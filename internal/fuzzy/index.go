// Package fuzzy ranks tags against a free-text query by their name and
// translation.
//
// The default approximate mode scores each field by the edit distance between
// the query and its best-matching substring, plus a penalty for how far into
// the field that substring starts. Scores run from 0 (exact match at the
// start) upward; a tag is accepted when its best field scores at or under the
// threshold. The subsequence mode delegates to sahilm/fuzzy for
// editor-style "characters in order" matching.
package fuzzy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// Mode selects the matching algorithm.
type Mode string

const (
	ModeApproximate Mode = "approximate"
	ModeSubsequence Mode = "subsequence"
)

// Defaults for the approximate scorer.
const (
	DefaultThreshold = 0.3
	DefaultDistance  = 100
)

// Options configures an Index.
type Options struct {
	Mode Mode
	// Threshold is the highest accepted score in approximate mode.
	Threshold float64
	// Distance scales the start-offset penalty: a match starting at rune
	// offset s costs s/Distance. Zero or less only accepts matches at
	// offset 0.
	Distance int
}

// DefaultOptions returns approximate matching with threshold 0.3 and
// distance 100.
func DefaultOptions() Options {
	return Options{Mode: ModeApproximate, Threshold: DefaultThreshold, Distance: DefaultDistance}
}

// Validate checks the mode and threshold.
func (o Options) Validate() error {
	switch o.Mode {
	case ModeApproximate, ModeSubsequence:
	default:
		return fmt.Errorf("unknown search mode %q", o.Mode)
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("search threshold %v out of range [0,1]", o.Threshold)
	}
	return nil
}

// ParseMode converts a config string to a Mode. Empty means approximate.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeApproximate, nil
	case ModeApproximate, ModeSubsequence:
		return m, nil
	default:
		return "", fmt.Errorf("unknown search mode %q", s)
	}
}

// Index is an immutable search index over a snapshot of tags. Build a new
// Index whenever the tag set changes.
type Index struct {
	opts   Options
	tags   []types.Tag
	fields [][2][]rune // lowercased name and translation per tag
}

// NewIndex builds an index over tags. The slice is copied.
func NewIndex(tags []types.Tag, opts Options) *Index {
	ix := &Index{
		opts:   opts,
		tags:   append([]types.Tag(nil), tags...),
		fields: make([][2][]rune, len(tags)),
	}
	for i, t := range tags {
		ix.fields[i] = [2][]rune{
			[]rune(strings.ToLower(t.Name)),
			[]rune(strings.ToLower(t.Translation)),
		}
	}
	return ix
}

// Len returns the number of indexed tags.
func (ix *Index) Len() int {
	return len(ix.tags)
}

// Search returns the tags matching query, best match first. Ties keep the
// order the tags were indexed in. A blank query matches nothing.
func (ix *Index) Search(query string) []types.Tag {
	q := strings.TrimSpace(query)
	if q == "" {
		return []types.Tag{}
	}
	if ix.opts.Mode == ModeSubsequence {
		return ix.searchSubsequence(q)
	}
	return ix.searchApproximate(q)
}

type hit struct {
	idx   int
	score float64
}

func (ix *Index) searchApproximate(query string) []types.Tag {
	q := []rune(strings.ToLower(query))

	var hits []hit
	for i, f := range ix.fields {
		best := score(q, f[0], ix.opts.Distance)
		if s := score(q, f[1], ix.opts.Distance); s < best {
			best = s
		}
		if best <= ix.opts.Threshold {
			hits = append(hits, hit{idx: i, score: best})
		}
	}

	// Lower is better.
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score < hits[b].score })
	return ix.collect(hits)
}

func (ix *Index) collect(hits []hit) []types.Tag {
	out := make([]types.Tag, len(hits))
	for i, h := range hits {
		out[i] = ix.tags[h.idx]
	}
	return out
}
