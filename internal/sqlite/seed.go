package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type defaultsFile struct {
	Categories []struct {
		Main string   `yaml:"main"`
		Sub  []string `yaml:"sub"`
	} `yaml:"categories"`
	Tags []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Translation string `yaml:"translation"`
		Main        string `yaml:"main"`
		Sub         string `yaml:"sub"`
		ImageURL    string `yaml:"image_url"`
	} `yaml:"tags"`
}

// DefaultCatalog returns the built-in tags and categories used to seed an
// empty data directory. Each call returns fresh slices.
func DefaultCatalog() ([]types.Tag, []types.Category, error) {
	var f defaultsFile
	if err := yaml.Unmarshal(defaultsYAML, &f); err != nil {
		return nil, nil, fmt.Errorf("parsing default catalog: %w", err)
	}

	tags := make([]types.Tag, 0, len(f.Tags))
	for _, t := range f.Tags {
		tags = append(tags, types.Tag{
			ID:           t.ID,
			Name:         t.Name,
			Translation:  t.Translation,
			MainCategory: t.Main,
			SubCategory:  t.Sub,
			ImageURL:     t.ImageURL,
		})
	}

	categories := make([]types.Category, 0, len(f.Categories))
	for _, c := range f.Categories {
		sub := c.Sub
		if sub == nil {
			sub = []string{}
		}
		categories = append(categories, types.Category{Main: c.Main, Sub: sub})
	}
	return tags, categories, nil
}

// InitializeIfEmpty seeds tags and categories. Each collection is seeded only
// when it holds no records, so a user who deleted every category keeps their
// tags untouched and vice versa.
func (b *Backend) InitializeIfEmpty(ctx context.Context, tags []types.Tag, categories []types.Category) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkAttached("initialize"); err != nil {
		return err
	}

	batch := types.NewBatch()
	var seededTags, seededCategories int

	empty, err := b.isEmpty(ctx, types.CollectionTags)
	if err != nil {
		return errs.Storage(err, "initialize", errs.FieldCollection(types.CollectionTags))
	}
	if empty && len(tags) > 0 {
		records := make([]any, len(tags))
		for i := range tags {
			t := tags[i]
			records[i] = &t
		}
		batch.Replace(types.CollectionTags, records)
		seededTags = len(records)
	}

	empty, err = b.isEmpty(ctx, types.CollectionCategories)
	if err != nil {
		return errs.Storage(err, "initialize", errs.FieldCollection(types.CollectionCategories))
	}
	if empty && len(categories) > 0 {
		records := make([]any, len(categories))
		for i := range categories {
			c := categories[i].Clone()
			records[i] = &c
		}
		batch.Replace(types.CollectionCategories, records)
		seededCategories = len(records)
	}

	if batch.Len() == 0 {
		return nil
	}
	for _, m := range batch.Mutations() {
		if err := validateMutation(m); err != nil {
			return err
		}
	}

	err = b.withTx(ctx, batch.Collections(), func(tx *sql.Tx) error {
		for _, m := range batch.Mutations() {
			if err := applyMutation(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errs.Storage(err, "initialize")
	}

	b.logger.Info("seeded empty catalog",
		slog.Int("tags", seededTags),
		slog.Int("categories", seededCategories))
	return nil
}

// isEmpty reports whether collection has no rows. The caller must hold b.mu.
func (b *Backend) isEmpty(ctx context.Context, collection string) (bool, error) {
	var n int
	if err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+collection).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
