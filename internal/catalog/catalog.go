// Package catalog keeps the in-memory mirror of the tag store in sync with
// durable storage and enforces the references between collections.
//
// Every mutation is written to the store first, as one batch, and applied
// to the mirror only after the store accepts it. A failed write leaves the
// mirror untouched. Deleting a tag or a category never leaves a selected
// snapshot or a weight behind in a different state than its partner
// collection.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/internal/fuzzy"
	"github.com/mesh-intelligence/tagshelf/internal/selection"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// DeletePolicy decides what happens to tags filed under a deleted category.
type DeletePolicy string

const (
	// PolicyCascade deletes the tags and drops them from the selection.
	PolicyCascade DeletePolicy = "cascade"
	// PolicyOrphan keeps the tags with their now unknown category.
	PolicyOrphan DeletePolicy = "orphan"
)

// ParseDeletePolicy converts a config value. Empty means PolicyCascade.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyCascade, nil
	case PolicyCascade, PolicyOrphan:
		return p, nil
	default:
		return "", fmt.Errorf("unknown category delete policy %q", s)
	}
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger for failed writes. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDeletePolicy sets the category delete policy.
func WithDeletePolicy(p DeletePolicy) Option {
	return func(c *Catalog) { c.policy = p }
}

// WithSearch sets the search options.
func WithSearch(o fuzzy.Options) Option {
	return func(c *Catalog) { c.search = o }
}

// Catalog owns the store and the mirror of its four collections.
type Catalog struct {
	store  types.Store
	logger *slog.Logger
	policy DeletePolicy
	search fuzzy.Options

	mu         sync.RWMutex
	tags       []types.Tag
	categories []types.Category
	sel        *selection.Selection

	index    *fuzzy.Index // nil until the next search after a tag change
	indexGen uint64
}

// New returns an empty Catalog over an attached store. Call Load before use.
func New(store types.Store, opts ...Option) *Catalog {
	c := &Catalog{
		store:  store,
		logger: slog.Default(),
		policy: PolicyCascade,
		search: fuzzy.DefaultOptions(),
		sel:    selection.New(nil, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed fills the tags and categories collections from the given defaults
// when they are empty. Call it before Load.
func (c *Catalog) Seed(ctx context.Context, tags []types.Tag, categories []types.Category) error {
	if err := c.store.InitializeIfEmpty(ctx, tags, categories); err != nil {
		return c.fail("seed", errs.Storage(err, "seed catalog"))
	}
	return nil
}

// Load replaces the mirror with the store's contents. The four collections
// are read concurrently.
func (c *Catalog) Load(ctx context.Context) error {
	var (
		tags       []types.Tag
		categories []types.Category
		selected   []types.Tag
		weights    types.Weights
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := c.store.GetAll(gctx, types.CollectionTags)
		if err != nil {
			return err
		}
		tags, err = toTags(records)
		return err
	})
	g.Go(func() error {
		records, err := c.store.GetAll(gctx, types.CollectionCategories)
		if err != nil {
			return err
		}
		categories, err = toCategories(records)
		return err
	})
	g.Go(func() error {
		records, err := c.store.GetAll(gctx, types.CollectionSelectedTags)
		if err != nil {
			return err
		}
		selected, err = toTags(records)
		return err
	})
	g.Go(func() error {
		records, err := c.store.GetAll(gctx, types.CollectionTagWeights)
		if err != nil {
			return err
		}
		weights, err = toWeights(records)
		return err
	})
	if err := g.Wait(); err != nil {
		return c.fail("load", errs.Storage(err, "load catalog"))
	}

	c.mu.Lock()
	c.tags = tags
	c.categories = categories
	c.sel = selection.New(selected, weights)
	c.invalidateIndex()
	c.mu.Unlock()
	return nil
}

// ListTags returns a copy of every tag in stored order.
func (c *Catalog) ListTags() []types.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.Tag{}, c.tags...)
}

// GetTag returns the tag with id.
func (c *Catalog) GetTag(id string) (types.Tag, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.tagIndex(id); i >= 0 {
		return c.tags[i], nil
	}
	return types.Tag{}, errs.Wrap(types.ErrNotFound, errs.CodeTagNotFound, "get tag", errs.FieldID(id))
}

// ListCategories returns a deep copy of every category in stored order.
func (c *Catalog) ListCategories() []types.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneCategories(c.categories)
}

// ListSelectedTags returns the selection in export order.
func (c *Catalog) ListSelectedTags() []types.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sel.Tags()
}

// ListWeights returns a copy of the weight map.
func (c *Catalog) ListWeights() types.Weights {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sel.Weights()
}

// TagsByCategory returns the mirror's tags under main, or under the exact
// (main, sub) pair when sub is not empty.
func (c *Catalog) TagsByCategory(main, sub string) []types.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []types.Tag{}
	for _, t := range c.tags {
		if t.MainCategory == main && (sub == "" || t.SubCategory == sub) {
			out = append(out, t)
		}
	}
	return out
}

// fail logs a rejected or failed operation and returns err unchanged.
func (c *Catalog) fail(op string, err error, fields ...errs.Attr) error {
	args := []any{slog.String("op", op), slog.String("error", err.Error())}
	if code := errs.CodeOf(err); code != "" {
		args = append(args, slog.String("code", string(code)))
	}
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	if errs.IsValidation(err) || errs.IsNotFound(err) {
		c.logger.Debug("catalog operation rejected", args...)
	} else {
		c.logger.Warn("catalog write failed", args...)
	}
	return err
}

// tagIndex returns the mirror position of id, or -1. Caller holds c.mu.
func (c *Catalog) tagIndex(id string) int {
	for i, t := range c.tags {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// categoryIndex returns the mirror position of main, or -1. Caller holds c.mu.
func (c *Catalog) categoryIndex(main string) int {
	return indexOfCategory(c.categories, main)
}

func cloneCategories(in []types.Category) []types.Category {
	out := make([]types.Category, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func toTags(records []any) ([]types.Tag, error) {
	out := make([]types.Tag, 0, len(records))
	for _, r := range records {
		switch t := r.(type) {
		case *types.Tag:
			out = append(out, *t)
		case types.Tag:
			out = append(out, t)
		default:
			return nil, fmt.Errorf("unexpected tag record %T", r)
		}
	}
	return out, nil
}

func toCategories(records []any) ([]types.Category, error) {
	out := make([]types.Category, 0, len(records))
	for _, r := range records {
		switch c := r.(type) {
		case *types.Category:
			out = append(out, c.Clone())
		case types.Category:
			out = append(out, c.Clone())
		default:
			return nil, fmt.Errorf("unexpected category record %T", r)
		}
	}
	return out, nil
}

func toWeights(records []any) (types.Weights, error) {
	out := make(types.Weights, len(records))
	for _, r := range records {
		switch w := r.(type) {
		case *types.Weight:
			out[w.ID] = w.Value
		case types.Weight:
			out[w.ID] = w.Value
		default:
			return nil, fmt.Errorf("unexpected weight record %T", r)
		}
	}
	return out, nil
}
