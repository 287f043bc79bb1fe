package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// SaveTag creates a tag from form and files its category pair, creating the
// category or subcategory when it does not exist yet.
func (c *Catalog) SaveTag(ctx context.Context, form types.TagFormData) (types.Tag, error) {
	if err := form.Validate(); err != nil {
		return types.Tag{}, c.fail("save tag", errs.Wrap(err, errs.CodeTagInvalid, "validate tag"))
	}
	id, err := uuid.NewV7()
	if err != nil {
		return types.Tag{}, c.fail("save tag", errs.Storage(err, "generate tag id"))
	}
	tag := form.Apply(types.Tag{ID: id.String()})

	c.mu.Lock()
	defer c.mu.Unlock()

	batch := types.NewBatch().Put(types.CollectionTags, &tag)
	categories, changed := c.withCategory(tag.MainCategory, tag.SubCategory)
	if changed {
		cat := categories[indexOfCategory(categories, tag.MainCategory)]
		batch.Put(types.CollectionCategories, &cat)
	}
	if err := c.store.Apply(ctx, batch); err != nil {
		return types.Tag{}, c.fail("save tag", errs.Storage(err, "save tag"), errs.FieldID(tag.ID))
	}

	c.tags = append(c.tags, tag)
	c.categories = categories
	c.invalidateIndex()
	return tag, nil
}

// UpdateTag replaces the stored tag with the same ID. Selected snapshots of
// the tag keep their old content. Returns a NotFound error for an unknown id.
func (c *Catalog) UpdateTag(ctx context.Context, tag types.Tag) error {
	if err := tag.FormData().Validate(); err != nil {
		return c.fail("update tag", errs.Wrap(err, errs.CodeTagInvalid, "validate tag", errs.FieldID(tag.ID)))
	}
	tag = tag.FormData().Apply(tag)

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.tagIndex(tag.ID)
	if i < 0 {
		return c.fail("update tag", errs.Wrap(types.ErrNotFound, errs.CodeTagNotFound, "update tag", errs.FieldID(tag.ID)))
	}

	batch := types.NewBatch().Put(types.CollectionTags, &tag)
	categories, changed := c.withCategory(tag.MainCategory, tag.SubCategory)
	if changed {
		cat := categories[indexOfCategory(categories, tag.MainCategory)]
		batch.Put(types.CollectionCategories, &cat)
	}
	if err := c.store.Apply(ctx, batch); err != nil {
		return c.fail("update tag", errs.Storage(err, "update tag"), errs.FieldID(tag.ID))
	}

	c.tags[i] = tag
	c.categories = categories
	c.invalidateIndex()
	return nil
}

// DeleteTag removes a tag and, in the same write, its selected snapshot and
// weight. Deleting an unknown id does nothing.
func (c *Catalog) DeleteTag(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return c.fail("delete tag", errs.Wrap(types.ErrInvalidID, errs.CodeTagInvalid, "delete tag"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.tagIndex(id)
	selected := c.sel.Contains(id)
	if i < 0 && !selected {
		return nil
	}

	batch := types.NewBatch()
	if i >= 0 {
		batch.Delete(types.CollectionTags, id)
	}
	next := c.sel.Clone()
	if selected {
		next.Deselect(id)
		batch.Delete(types.CollectionSelectedTags, id).
			Delete(types.CollectionTagWeights, id)
	}
	if err := c.store.Apply(ctx, batch); err != nil {
		return c.fail("delete tag", errs.Storage(err, "delete tag"), errs.FieldID(id))
	}

	if i >= 0 {
		c.tags = append(c.tags[:i:i], c.tags[i+1:]...)
		c.invalidateIndex()
	}
	c.sel = next
	return nil
}

// withCategory returns the categories with (main, sub) filed, and whether
// anything had to be added. The mirror is not modified. Caller holds c.mu.
func (c *Catalog) withCategory(main, sub string) ([]types.Category, bool) {
	categories := cloneCategories(c.categories)
	i := indexOfCategory(categories, main)
	if i < 0 {
		cat := types.Category{Main: main, Sub: []string{}}
		cat.AddSub(sub)
		return append(categories, cat), true
	}
	return categories, categories[i].AddSub(sub)
}

func indexOfCategory(categories []types.Category, main string) int {
	for i, cat := range categories {
		if cat.Main == main {
			return i
		}
	}
	return -1
}
