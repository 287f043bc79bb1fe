package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// keyColumns maps each collection to its primary key column.
var keyColumns = map[string]string{
	types.CollectionTags:         "id",
	types.CollectionCategories:   "main",
	types.CollectionSelectedTags: "id",
	types.CollectionTagWeights:   "id",
}

// GetAll returns every record of collection in stored order.
func (b *Backend) GetAll(ctx context.Context, collection string) ([]any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkAttached("get all"); err != nil {
		return nil, err
	}
	if !types.IsCollection(collection) {
		return nil, unknownCollection(collection)
	}

	records, err := queryCollection(ctx, b.db, collection)
	if err != nil {
		return nil, errs.Storage(err, "get all", errs.FieldCollection(collection))
	}
	return records, nil
}

// Put upserts record into collection. A new record is appended to the
// collection order; an existing one keeps its place.
func (b *Backend) Put(ctx context.Context, collection string, record any) error {
	return b.Apply(ctx, types.NewBatch().Put(collection, record))
}

// Delete removes the record with key from collection. Missing keys are a
// no-op.
func (b *Backend) Delete(ctx context.Context, collection, key string) error {
	return b.Apply(ctx, types.NewBatch().Delete(collection, key))
}

// ClearAndReplace replaces the contents of collection with records, in order.
func (b *Backend) ClearAndReplace(ctx context.Context, collection string, records []any) error {
	return b.Apply(ctx, types.NewBatch().Replace(collection, records))
}

// Apply runs every mutation of batch in one transaction and rewrites the
// JSONL file of each touched collection.
func (b *Backend) Apply(ctx context.Context, batch *types.Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	// Validate before taking the lock so bad input never opens a transaction.
	for _, m := range batch.Mutations() {
		if err := validateMutation(m); err != nil {
			return err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkAttached("apply"); err != nil {
		return err
	}

	err := b.withTx(ctx, batch.Collections(), func(tx *sql.Tx) error {
		for _, m := range batch.Mutations() {
			if err := applyMutation(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errs.Storage(err, "apply batch", errs.Field("mutations", batch.Len()))
	}
	return nil
}

// TagsByCategory returns the tags filed under main, or under the exact
// (main, sub) pair when sub is not empty, in stored order.
func (b *Backend) TagsByCategory(ctx context.Context, main, sub string) ([]types.Tag, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkAttached("tags by category"); err != nil {
		return nil, err
	}

	const cols = "SELECT id, name, translation, main_category, sub_category, image_url FROM tags"
	var (
		tags []types.Tag
		err  error
	)
	if sub == "" {
		tags, err = queryTags(ctx, b.db, cols+" WHERE main_category = ? ORDER BY seq", main)
	} else {
		tags, err = queryTags(ctx, b.db, cols+" WHERE main_category = ? AND sub_category = ? ORDER BY seq", main, sub)
	}
	if err != nil {
		return nil, errs.Storage(err, "tags by category", errs.FieldCategory(main))
	}
	return tags, nil
}

func unknownCollection(collection string) error {
	return errs.Wrap(types.ErrUnknownCollection, errs.CodeStoreUnavailable, "resolve collection",
		errs.FieldCollection(collection))
}

// validateMutation checks the collection and record shape of m.
func validateMutation(m types.Mutation) error {
	if !types.IsCollection(m.Collection) {
		return unknownCollection(m.Collection)
	}
	switch m.Op {
	case types.OpPut:
		if _, err := checkRecord(m.Collection, m.Record); err != nil {
			return errs.Wrap(err, validationCode(m.Collection), "put", errs.FieldCollection(m.Collection))
		}
	case types.OpDelete:
		if m.Key == "" {
			return errs.Wrap(types.ErrInvalidID, validationCode(m.Collection), "delete", errs.FieldCollection(m.Collection))
		}
	case types.OpReplace:
		for _, r := range m.Records {
			if _, err := checkRecord(m.Collection, r); err != nil {
				return errs.Wrap(err, validationCode(m.Collection), "replace", errs.FieldCollection(m.Collection))
			}
		}
	default:
		return errs.Errorf(errs.CodeStoreUnavailable, "unknown mutation %q", m.Op)
	}
	return nil
}

func validationCode(collection string) errs.Code {
	switch collection {
	case types.CollectionCategories:
		return errs.CodeCategoryInvalid
	case types.CollectionTagWeights:
		return errs.CodeWeightInvalid
	case types.CollectionSelectedTags:
		return errs.CodeSelectionInvalid
	default:
		return errs.CodeTagInvalid
	}
}

// checkRecord returns record converted to the entity type of collection.
func checkRecord(collection string, record any) (any, error) {
	switch collection {
	case types.CollectionTags, types.CollectionSelectedTags:
		return asTag(record)
	case types.CollectionCategories:
		return asCategory(record)
	case types.CollectionTagWeights:
		return asWeight(record)
	default:
		return nil, types.ErrUnknownCollection
	}
}

func applyMutation(ctx context.Context, tx queryer, m types.Mutation) error {
	switch m.Op {
	case types.OpPut:
		return putRecord(ctx, tx, m.Collection, m.Record)
	case types.OpDelete:
		q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", m.Collection, keyColumns[m.Collection])
		if _, err := tx.ExecContext(ctx, q, m.Key); err != nil {
			return fmt.Errorf("deleting from %s: %w", m.Collection, err)
		}
		return nil
	case types.OpReplace:
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+m.Collection); err != nil {
			return fmt.Errorf("clearing %s: %w", m.Collection, err)
		}
		for _, r := range m.Records {
			if err := putRecord(ctx, tx, m.Collection, r); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown mutation %q", m.Op)
	}
}

const (
	upsertTag = `INSERT INTO tags (id, name, translation, main_category, sub_category, image_url, seq)
VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM tags))
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    translation = excluded.translation,
    main_category = excluded.main_category,
    sub_category = excluded.sub_category,
    image_url = excluded.image_url`

	upsertSelectedTag = `INSERT INTO selected_tags (id, name, translation, main_category, sub_category, image_url, position)
VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM selected_tags))
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    translation = excluded.translation,
    main_category = excluded.main_category,
    sub_category = excluded.sub_category,
    image_url = excluded.image_url`

	upsertCategory = `INSERT INTO categories (main, sub, seq)
VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM categories))
ON CONFLICT(main) DO UPDATE SET sub = excluded.sub`

	upsertWeight = `INSERT INTO tag_weights (id, value) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET value = excluded.value`
)

// putRecord upserts one already shaped record.
func putRecord(ctx context.Context, tx queryer, collection string, record any) error {
	switch collection {
	case types.CollectionTags, types.CollectionSelectedTags:
		t, err := asTag(record)
		if err != nil {
			return err
		}
		q := upsertTag
		if collection == types.CollectionSelectedTags {
			q = upsertSelectedTag
		}
		if _, err := tx.ExecContext(ctx, q, t.ID, t.Name, t.Translation, t.MainCategory, t.SubCategory, t.ImageURL); err != nil {
			return fmt.Errorf("upserting into %s: %w", collection, err)
		}
	case types.CollectionCategories:
		c, err := asCategory(record)
		if err != nil {
			return err
		}
		sub := c.Sub
		if sub == nil {
			sub = []string{}
		}
		subJSON, err := json.Marshal(sub)
		if err != nil {
			return fmt.Errorf("encoding category %s: %w", c.Main, err)
		}
		if _, err := tx.ExecContext(ctx, upsertCategory, c.Main, string(subJSON)); err != nil {
			return fmt.Errorf("upserting category: %w", err)
		}
	case types.CollectionTagWeights:
		w, err := asWeight(record)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertWeight, w.ID, w.Value); err != nil {
			return fmt.Errorf("upserting tag weight: %w", err)
		}
	default:
		return types.ErrUnknownCollection
	}
	return nil
}
