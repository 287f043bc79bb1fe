package catalog

import (
	"github.com/mesh-intelligence/tagshelf/internal/fuzzy"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// Search returns the tags whose name or translation matches query, best
// first. A blank query returns no tags.
func (c *Catalog) Search(query string) []types.Tag {
	return c.currentIndex().Search(query)
}

// currentIndex returns the search index for the current tags, building it
// when the tags changed since the last search.
func (c *Catalog) currentIndex() *fuzzy.Index {
	c.mu.RLock()
	ix, gen := c.index, c.indexGen
	var tags []types.Tag
	if ix == nil {
		tags = append(tags, c.tags...)
	}
	c.mu.RUnlock()
	if ix != nil {
		return ix
	}

	ix = fuzzy.NewIndex(tags, c.search)
	c.mu.Lock()
	if c.indexGen == gen {
		c.index = ix
	}
	c.mu.Unlock()
	return ix
}

// invalidateIndex drops the search index after a tag change.
// Caller holds c.mu for writing.
func (c *Catalog) invalidateIndex() {
	c.index = nil
	c.indexGen++
}
