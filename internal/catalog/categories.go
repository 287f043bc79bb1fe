package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// Rename describes a category rename. With IsMain set, Old and New are main
// category names. Otherwise they are subcategory names under Main.
type Rename struct {
	Old    string
	New    string
	IsMain bool
	Main   string
}

// UpsertCategory files main, and sub when given, creating whichever is
// missing. Existing entries are left as they are.
func (c *Catalog) UpsertCategory(ctx context.Context, main, sub string) error {
	main, sub = strings.TrimSpace(main), strings.TrimSpace(sub)
	if main == "" {
		return c.fail("upsert category", errs.Wrap(types.ErrInvalidName, errs.CodeCategoryInvalid, "upsert category"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	categories, changed := c.withCategory(main, sub)
	if !changed {
		return nil
	}
	cat := categories[indexOfCategory(categories, main)]
	if err := c.store.Put(ctx, types.CollectionCategories, &cat); err != nil {
		return c.fail("upsert category", errs.Storage(err, "upsert category"), errs.FieldCategory(main))
	}
	c.categories = categories
	return nil
}

// UpdateCategories replaces every category with categories, in order.
// Tags are not touched.
func (c *Catalog) UpdateCategories(ctx context.Context, categories []types.Category) error {
	next, err := normalizeCategories(categories)
	if err != nil {
		return c.fail("update categories", errs.Wrap(err, errs.CodeCategoryInvalid, "validate categories"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]any, len(next))
	for i := range next {
		records[i] = &next[i]
	}
	if err := c.store.ClearAndReplace(ctx, types.CollectionCategories, records); err != nil {
		return c.fail("update categories", errs.Storage(err, "update categories"))
	}
	c.categories = cloneCategories(next)
	return nil
}

// DeleteCategory removes the subcategory sub of main, or the whole main
// category when sub is empty. Under PolicyCascade the tags filed there are
// deleted too and dropped from the selection in the same write. Deleting an
// unknown category does nothing.
func (c *Catalog) DeleteCategory(ctx context.Context, main, sub string) error {
	main, sub = strings.TrimSpace(main), strings.TrimSpace(sub)
	if main == "" {
		return c.fail("delete category", errs.Wrap(types.ErrInvalidName, errs.CodeCategoryInvalid, "delete category"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ci := c.categoryIndex(main)
	if ci < 0 || (sub != "" && !c.categories[ci].HasSub(sub)) {
		return nil
	}

	categories := cloneCategories(c.categories)
	batch := types.NewBatch()
	if sub == "" {
		categories = append(categories[:ci], categories[ci+1:]...)
		batch.Delete(types.CollectionCategories, main)
	} else {
		categories[ci].RemoveSub(sub)
		cat := categories[ci]
		batch.Put(types.CollectionCategories, &cat)
	}

	removed := map[string]bool{}
	next := c.sel
	if c.policy == PolicyCascade {
		dependents, err := c.store.TagsByCategory(ctx, main, sub)
		if err != nil {
			return c.fail("delete category", errs.Storage(err, "find dependent tags"), errs.FieldCategory(main))
		}
		next = c.sel.Clone()
		deselected := false
		for _, t := range dependents {
			removed[t.ID] = true
			batch.Delete(types.CollectionTags, t.ID)
			if next.Deselect(t.ID) {
				deselected = true
			}
		}
		if deselected {
			batch.Replace(types.CollectionSelectedTags, next.TagRecords()).
				Replace(types.CollectionTagWeights, next.WeightRecords())
		}
	}

	if err := c.store.Apply(ctx, batch); err != nil {
		return c.fail("delete category", errs.Storage(err, "delete category"), errs.FieldCategory(main))
	}

	c.categories = categories
	c.sel = next
	if len(removed) > 0 {
		kept := c.tags[:0:0]
		for _, t := range c.tags {
			if !removed[t.ID] {
				kept = append(kept, t)
			}
		}
		c.tags = kept
		c.invalidateIndex()
	}
	return nil
}

// RenameCategory renames a main category or a subcategory and rewrites
// every tag and selected snapshot filed under the old name. Renaming to a
// name already in use at the same level is a validation error.
func (c *Catalog) RenameCategory(ctx context.Context, r Rename) error {
	r.Old, r.New, r.Main = strings.TrimSpace(r.Old), strings.TrimSpace(r.New), strings.TrimSpace(r.Main)
	if r.Old == "" || r.New == "" || (!r.IsMain && r.Main == "") {
		return c.fail("rename category", errs.Wrap(types.ErrInvalidName, errs.CodeCategoryInvalid, "rename category"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	owner := r.Main
	if r.IsMain {
		owner = r.Old
	}
	ci := c.categoryIndex(owner)
	if ci < 0 {
		return c.fail("rename category", errs.Wrap(types.ErrNotFound, errs.CodeCategoryNotFound, "rename category", errs.FieldCategory(owner)))
	}
	if r.Old == r.New {
		if !r.IsMain && !c.categories[ci].HasSub(r.Old) {
			return c.fail("rename category", errs.Wrap(types.ErrNotFound, errs.CodeCategoryNotFound, "rename category", errs.FieldCategory(r.Old)))
		}
		return nil
	}

	categories := cloneCategories(c.categories)
	batch := types.NewBatch()
	if r.IsMain {
		if c.categoryIndex(r.New) >= 0 {
			return c.fail("rename category", errs.Wrap(types.ErrDuplicateName, errs.CodeCategoryInvalid, "rename category", errs.FieldCategory(r.New)))
		}
		categories[ci].Main = r.New
		records := make([]any, len(categories))
		for i := range categories {
			records[i] = &categories[i]
		}
		// Replace keeps the renamed record in its place.
		batch.Replace(types.CollectionCategories, records)
	} else {
		if err := categories[ci].RenameSub(r.Old, r.New); err != nil {
			code := errs.CodeCategoryInvalid
			if errors.Is(err, types.ErrNotFound) {
				code = errs.CodeCategoryNotFound
			}
			return c.fail("rename category", errs.Wrap(err, code, "rename category", errs.FieldCategory(r.Old)))
		}
		cat := categories[ci]
		batch.Put(types.CollectionCategories, &cat)
	}

	tags := append([]types.Tag{}, c.tags...)
	for i := range tags {
		t := &tags[i]
		switch {
		case r.IsMain && t.MainCategory == r.Old:
			t.MainCategory = r.New
		case !r.IsMain && t.MainCategory == r.Main && t.SubCategory == r.Old:
			t.SubCategory = r.New
		default:
			continue
		}
		batch.Put(types.CollectionTags, t)
	}

	next := c.sel.Clone()
	if next.RenameCategory(r.Main, r.Old, r.New, r.IsMain) > 0 {
		batch.Replace(types.CollectionSelectedTags, next.TagRecords())
	}

	if err := c.store.Apply(ctx, batch); err != nil {
		return c.fail("rename category", errs.Storage(err, "rename category"), errs.FieldCategory(r.Old))
	}

	c.categories = categories
	c.tags = tags
	c.sel = next
	c.invalidateIndex()
	return nil
}

// normalizeCategories trims names and rejects empty or repeated mains and
// subs.
func normalizeCategories(in []types.Category) ([]types.Category, error) {
	out := make([]types.Category, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, cat := range in {
		main := strings.TrimSpace(cat.Main)
		if main == "" {
			return nil, types.ErrInvalidName
		}
		if seen[main] {
			return nil, types.ErrDuplicateName
		}
		seen[main] = true

		next := types.Category{Main: main, Sub: []string{}}
		for _, s := range cat.Sub {
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, types.ErrInvalidName
			}
			if !next.AddSub(s) {
				return nil, types.ErrDuplicateName
			}
		}
		out = append(out, next)
	}
	return out, nil
}
