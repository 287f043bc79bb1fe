package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// The JSONL record format of each collection is the JSON encoding of its
// entity type: types.Tag for tags and selected_tags, types.Category for
// categories, and types.Weight for tag_weights.

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// asTag accepts a *types.Tag or types.Tag record.
func asTag(record any) (*types.Tag, error) {
	switch t := record.(type) {
	case *types.Tag:
		if t == nil {
			return nil, types.ErrInvalidData
		}
		if t.ID == "" {
			return nil, types.ErrInvalidID
		}
		return t, nil
	case types.Tag:
		return asTag(&t)
	default:
		return nil, types.ErrInvalidData
	}
}

// asCategory accepts a *types.Category or types.Category record.
func asCategory(record any) (*types.Category, error) {
	switch c := record.(type) {
	case *types.Category:
		if c == nil {
			return nil, types.ErrInvalidData
		}
		if c.Main == "" {
			return nil, types.ErrInvalidName
		}
		return c, nil
	case types.Category:
		return asCategory(&c)
	default:
		return nil, types.ErrInvalidData
	}
}

// asWeight accepts a *types.Weight or types.Weight record.
func asWeight(record any) (*types.Weight, error) {
	switch w := record.(type) {
	case *types.Weight:
		if w == nil {
			return nil, types.ErrInvalidData
		}
		if w.ID == "" {
			return nil, types.ErrInvalidID
		}
		if w.Value < 0 || w.Value > types.MaxWeight {
			return nil, types.ErrInvalidWeight
		}
		return w, nil
	case types.Weight:
		return asWeight(&w)
	default:
		return nil, types.ErrInvalidData
	}
}

// decodeRecord parses one JSONL line into the collection's entity type and
// validates it with the same rules as a Put.
func decodeRecord(collection string, raw json.RawMessage) (any, error) {
	switch collection {
	case types.CollectionTags, types.CollectionSelectedTags:
		var t types.Tag
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, err
		}
		return asTag(&t)
	case types.CollectionCategories:
		var c types.Category
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		if c.Sub == nil {
			c.Sub = []string{}
		}
		return asCategory(&c)
	case types.CollectionTagWeights:
		var w types.Weight
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return asWeight(&w)
	default:
		return nil, types.ErrUnknownCollection
	}
}

// queryCollection reads a whole collection in stored order.
func queryCollection(ctx context.Context, q queryer, collection string) ([]any, error) {
	switch collection {
	case types.CollectionTags:
		tags, err := queryTags(ctx, q,
			"SELECT id, name, translation, main_category, sub_category, image_url FROM tags ORDER BY seq")
		if err != nil {
			return nil, err
		}
		return tagsToRecords(tags), nil
	case types.CollectionSelectedTags:
		tags, err := queryTags(ctx, q,
			"SELECT id, name, translation, main_category, sub_category, image_url FROM selected_tags ORDER BY position")
		if err != nil {
			return nil, err
		}
		return tagsToRecords(tags), nil
	case types.CollectionCategories:
		return queryCategories(ctx, q)
	case types.CollectionTagWeights:
		return queryWeights(ctx, q)
	default:
		return nil, types.ErrUnknownCollection
	}
}

func tagsToRecords(tags []types.Tag) []any {
	out := make([]any, len(tags))
	for i := range tags {
		out[i] = &tags[i]
	}
	return out
}

func queryTags(ctx context.Context, q queryer, query string, args ...any) ([]types.Tag, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	tags := []types.Tag{}
	for rows.Next() {
		var t types.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Translation, &t.MainCategory, &t.SubCategory, &t.ImageURL); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func queryCategories(ctx context.Context, q queryer) ([]any, error) {
	rows, err := q.QueryContext(ctx, "SELECT main, sub FROM categories ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	out := []any{}
	for rows.Next() {
		var c types.Category
		var subJSON string
		if err := rows.Scan(&c.Main, &subJSON); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		if err := json.Unmarshal([]byte(subJSON), &c.Sub); err != nil {
			return nil, fmt.Errorf("parsing category %s subs: %w", c.Main, err)
		}
		if c.Sub == nil {
			c.Sub = []string{}
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func queryWeights(ctx context.Context, q queryer) ([]any, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, value FROM tag_weights ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying tag weights: %w", err)
	}
	defer rows.Close()

	out := []any{}
	for rows.Next() {
		var w types.Weight
		if err := rows.Scan(&w.ID, &w.Value); err != nil {
			return nil, fmt.Errorf("scanning tag weight: %w", err)
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}
