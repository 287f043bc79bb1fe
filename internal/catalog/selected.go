package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/internal/selection"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// Select appends a snapshot of tag to the selection with weight 0.
// Selecting an id that is already selected does nothing.
func (c *Catalog) Select(ctx context.Context, tag types.Tag) error {
	if strings.TrimSpace(tag.ID) == "" {
		return c.fail("select", errs.Wrap(types.ErrInvalidID, errs.CodeSelectionInvalid, "select"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.sel.Clone()
	if !next.Select(tag) {
		return nil
	}
	return c.commitSelection(ctx, "select", next, errs.FieldID(tag.ID))
}

// SelectByID selects the catalog tag with id.
func (c *Catalog) SelectByID(ctx context.Context, id string) (types.Tag, error) {
	tag, err := c.GetTag(id)
	if err != nil {
		return types.Tag{}, c.fail("select", err)
	}
	return tag, c.Select(ctx, tag)
}

// SelectManual selects free text as a synthetic tag that is not part of
// the catalog.
func (c *Catalog) SelectManual(ctx context.Context, text string) (types.Tag, error) {
	tag, err := selection.NewManualTag(text)
	if err != nil {
		if errors.Is(err, types.ErrInvalidName) {
			return types.Tag{}, c.fail("select manual", errs.Wrap(err, errs.CodeSelectionInvalid, "select manual"))
		}
		return types.Tag{}, c.fail("select manual", errs.Storage(err, "generate manual id"))
	}
	return tag, c.Select(ctx, tag)
}

// Deselect removes id and its weight. Deselecting an id that is not
// selected does nothing.
func (c *Catalog) Deselect(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.sel.Clone()
	if !next.Deselect(id) {
		return nil
	}
	return c.commitSelection(ctx, "deselect", next, errs.FieldID(id))
}

// ClearAll empties the selection and every weight in one write.
func (c *Catalog) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.sel.Clone()
	next.Clear()
	return c.commitSelection(ctx, "clear", next)
}

// Reorder sets the selection order to ids, which must name every selected
// tag exactly once.
func (c *Catalog) Reorder(ctx context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.sel.Clone()
	if err := next.Reorder(ids); err != nil {
		return c.fail("reorder", errs.Wrap(err, errs.CodeSelectionInvalid, "reorder"))
	}
	return c.persistOrder(ctx, "reorder", next)
}

// Move relocates the selected entry at from to index to.
func (c *Catalog) Move(ctx context.Context, from, to int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.sel.Clone()
	if err := next.Move(from, to); err != nil {
		return c.fail("move", errs.Wrap(err, errs.CodeSelectionInvalid, "move",
			errs.Field("from", from), errs.Field("to", to)))
	}
	if from == to {
		return nil
	}
	return c.persistOrder(ctx, "move", next)
}

// SetWeight sets the weight of a selected id. Negative values become 0;
// values above types.MaxWeight are rejected.
func (c *Catalog) SetWeight(ctx context.Context, id string, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.sel.Clone()
	if err := next.SetWeight(id, n); err != nil {
		return c.fail("set weight", weightError(err, id, n))
	}
	return c.persistWeights(ctx, "set weight", next, errs.FieldID(id))
}

// AdjustWeight moves the weight of a selected id by delta, which must be
// +1 or -1, and returns the new weight. The weight stops at 0 and at
// types.MaxWeight.
func (c *Catalog) AdjustWeight(ctx context.Context, id string, delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.sel.Clone()
	n, err := next.AdjustWeight(id, delta)
	if err != nil {
		return 0, c.fail("adjust weight", weightError(err, id, delta))
	}
	if n == c.sel.Weight(id) {
		return n, nil
	}
	if err := c.persistWeights(ctx, "adjust weight", next, errs.FieldID(id)); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateSelectedTags replaces the selection with tags. Weights of ids that
// stay selected are kept; the rest are dropped.
func (c *Catalog) UpdateSelectedTags(ctx context.Context, tags []types.Tag) error {
	for _, t := range tags {
		if strings.TrimSpace(t.ID) == "" {
			return c.fail("update selected tags", errs.Wrap(types.ErrInvalidID, errs.CodeSelectionInvalid, "update selected tags"))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := selection.New(tags, c.sel.Weights())
	return c.commitSelection(ctx, "update selected tags", next)
}

// UpdateTagWeights replaces every weight. Each id must be selected and each
// value at most types.MaxWeight; selected ids left out get weight 0 and
// negative values become 0.
func (c *Catalog) UpdateTagWeights(ctx context.Context, weights types.Weights) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, n := range weights {
		if !c.sel.Contains(id) {
			return c.fail("update tag weights", notSelected(types.ErrNotSelected, id))
		}
		if n > types.MaxWeight {
			return c.fail("update tag weights", weightError(types.ErrInvalidWeight, id, n))
		}
	}
	next := selection.New(c.sel.Tags(), weights)
	return c.persistWeights(ctx, "update tag weights", next)
}

// commitSelection writes both the selection and its weights in one batch
// and swaps the mirror on success. Caller holds c.mu.
func (c *Catalog) commitSelection(ctx context.Context, op string, next *selection.Selection, attrs ...errs.Attr) error {
	batch := types.NewBatch().
		Replace(types.CollectionSelectedTags, next.TagRecords()).
		Replace(types.CollectionTagWeights, next.WeightRecords())
	return c.apply(ctx, op, batch, next, attrs...)
}

// persistOrder writes only the selection order. Caller holds c.mu.
func (c *Catalog) persistOrder(ctx context.Context, op string, next *selection.Selection) error {
	batch := types.NewBatch().Replace(types.CollectionSelectedTags, next.TagRecords())
	return c.apply(ctx, op, batch, next)
}

// persistWeights writes only the weights. Caller holds c.mu.
func (c *Catalog) persistWeights(ctx context.Context, op string, next *selection.Selection, attrs ...errs.Attr) error {
	batch := types.NewBatch().Replace(types.CollectionTagWeights, next.WeightRecords())
	return c.apply(ctx, op, batch, next, attrs...)
}

func (c *Catalog) apply(ctx context.Context, op string, batch *types.Batch, next *selection.Selection, attrs ...errs.Attr) error {
	if err := c.store.Apply(ctx, batch); err != nil {
		return c.fail(op, errs.Storage(err, op, attrs...), attrs...)
	}
	c.sel = next
	return nil
}

// weightError classifies a Selection weight error: bad values are
// validation errors, anything else means id is not selected.
func weightError(err error, id string, value int) error {
	if errors.Is(err, types.ErrInvalidWeight) || errors.Is(err, types.ErrInvalidDelta) {
		return errs.Wrap(err, errs.CodeWeightInvalid, "invalid weight", errs.FieldID(id), errs.Field("value", value))
	}
	return notSelected(err, id)
}

func notSelected(err error, id string) error {
	return errs.Wrap(err, errs.CodeSelectionMissing, "tag is not selected", errs.FieldID(id))
}
