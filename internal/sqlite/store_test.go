package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

func tag(id, name, main, sub string) *types.Tag {
	return &types.Tag{ID: id, Name: name, Translation: name + "-tr", MainCategory: main, SubCategory: sub}
}

func tagIDs(t *testing.T, records []any) []string {
	t.Helper()
	ids := make([]string, len(records))
	for i, r := range records {
		tg, ok := r.(*types.Tag)
		require.True(t, ok, "record %d is %T", i, r)
		ids[i] = tg.ID
	}
	return ids
}

func TestStore_Collections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(t *testing.T, b *Backend)
		check func(t *testing.T, b *Backend, dir string)
	}{
		{
			name: "empty store returns empty slices",
			check: func(t *testing.T, b *Backend, dir string) {
				for _, c := range types.StandardCollections {
					records, err := b.GetAll(ctx, c)
					require.NoError(t, err)
					assert.NotNil(t, records)
					assert.Empty(t, records)
				}
			},
		},
		{
			name: "put keeps insertion order and upsert keeps position",
			setup: func(t *testing.T, b *Backend) {
				require.NoError(t, b.Put(ctx, types.CollectionTags, tag("b", "bee", "animals", "insects")))
				require.NoError(t, b.Put(ctx, types.CollectionTags, tag("a", "ant", "animals", "insects")))
				require.NoError(t, b.Put(ctx, types.CollectionTags, tag("b", "bumblebee", "animals", "insects")))
			},
			check: func(t *testing.T, b *Backend, dir string) {
				records, err := b.GetAll(ctx, types.CollectionTags)
				require.NoError(t, err)
				assert.Equal(t, []string{"b", "a"}, tagIDs(t, records))
				assert.Equal(t, "bumblebee", records[0].(*types.Tag).Name)
			},
		},
		{
			name: "put writes the JSONL file",
			setup: func(t *testing.T, b *Backend) {
				require.NoError(t, b.Put(ctx, types.CollectionTags, tag("1", "cat", "animals", "pets")))
			},
			check: func(t *testing.T, b *Backend, dir string) {
				data, err := os.ReadFile(filepath.Join(dir, "tags.jsonl"))
				require.NoError(t, err)
				assert.Equal(t, `{"id":"1","name":"cat","translation":"cat-tr","mainCategory":"animals","subCategory":"pets"}`+"\n", string(data))
			},
		},
		{
			name: "delete removes and ignores missing keys",
			setup: func(t *testing.T, b *Backend) {
				require.NoError(t, b.Put(ctx, types.CollectionTags, tag("1", "cat", "animals", "pets")))
				require.NoError(t, b.Put(ctx, types.CollectionTags, tag("2", "dog", "animals", "pets")))
				require.NoError(t, b.Delete(ctx, types.CollectionTags, "1"))
				require.NoError(t, b.Delete(ctx, types.CollectionTags, "missing"))
			},
			check: func(t *testing.T, b *Backend, dir string) {
				records, err := b.GetAll(ctx, types.CollectionTags)
				require.NoError(t, err)
				assert.Equal(t, []string{"2"}, tagIDs(t, records))
			},
		},
		{
			name: "clear and replace stores the given order",
			setup: func(t *testing.T, b *Backend) {
				require.NoError(t, b.Put(ctx, types.CollectionSelectedTags, tag("x", "x", "", "")))
				require.NoError(t, b.ClearAndReplace(ctx, types.CollectionSelectedTags, []any{
					tag("c", "c", "", ""), tag("a", "a", "", ""), tag("b", "b", "", ""),
				}))
			},
			check: func(t *testing.T, b *Backend, dir string) {
				records, err := b.GetAll(ctx, types.CollectionSelectedTags)
				require.NoError(t, err)
				assert.Equal(t, []string{"c", "a", "b"}, tagIDs(t, records))
			},
		},
		{
			name: "categories round trip with sub order",
			setup: func(t *testing.T, b *Backend) {
				require.NoError(t, b.Put(ctx, types.CollectionCategories, &types.Category{Main: "art", Sub: []string{"music", "painting"}}))
				require.NoError(t, b.Put(ctx, types.CollectionCategories, &types.Category{Main: "science"}))
			},
			check: func(t *testing.T, b *Backend, dir string) {
				records, err := b.GetAll(ctx, types.CollectionCategories)
				require.NoError(t, err)
				require.Len(t, records, 2)
				assert.Equal(t, &types.Category{Main: "art", Sub: []string{"music", "painting"}}, records[0])
				assert.Equal(t, &types.Category{Main: "science", Sub: []string{}}, records[1])
			},
		},
		{
			name: "weights upsert by id",
			setup: func(t *testing.T, b *Backend) {
				require.NoError(t, b.Put(ctx, types.CollectionTagWeights, &types.Weight{ID: "1", Value: 1}))
				require.NoError(t, b.Put(ctx, types.CollectionTagWeights, types.Weight{ID: "1", Value: 4}))
			},
			check: func(t *testing.T, b *Backend, dir string) {
				records, err := b.GetAll(ctx, types.CollectionTagWeights)
				require.NoError(t, err)
				assert.Equal(t, []any{&types.Weight{ID: "1", Value: 4}}, records)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, dir := attachTestBackend(t)
			if tt.setup != nil {
				tt.setup(t, b)
			}
			tt.check(t, b, dir)
		})
	}
}

func TestStore_RejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	b, _ := attachTestBackend(t)

	tests := []struct {
		name       string
		collection string
		record     any
	}{
		{"tag without id", types.CollectionTags, &types.Tag{Name: "cat"}},
		{"wrong record type", types.CollectionTags, &types.Weight{ID: "1"}},
		{"category without main", types.CollectionCategories, &types.Category{}},
		{"negative weight", types.CollectionTagWeights, &types.Weight{ID: "1", Value: -1}},
		{"weight above the maximum", types.CollectionTagWeights, &types.Weight{ID: "1", Value: types.MaxWeight + 1}},
		{"nil tag", types.CollectionSelectedTags, (*types.Tag)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Put(ctx, tt.collection, tt.record)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err), "got %v", err)
		})
	}

	err := b.Put(ctx, "bookmarks", tag("1", "cat", "", ""))
	assert.ErrorIs(t, err, types.ErrUnknownCollection)
	_, err = b.GetAll(ctx, "bookmarks")
	assert.ErrorIs(t, err, types.ErrUnknownCollection)
}

func TestStore_ApplyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	b, _ := attachTestBackend(t)

	require.NoError(t, b.Put(ctx, types.CollectionSelectedTags, tag("1", "cat", "", "")))
	require.NoError(t, b.Put(ctx, types.CollectionTagWeights, &types.Weight{ID: "1", Value: 2}))

	// The second mutation is invalid, so the first must not land either.
	batch := types.NewBatch().
		Delete(types.CollectionSelectedTags, "1").
		Put(types.CollectionTagWeights, &types.Weight{ID: "1", Value: -5})
	require.Error(t, b.Apply(ctx, batch))

	selected, err := b.GetAll(ctx, types.CollectionSelectedTags)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, tagIDs(t, selected))

	// A valid paired batch updates both collections.
	batch = types.NewBatch().
		Delete(types.CollectionSelectedTags, "1").
		Delete(types.CollectionTagWeights, "1")
	require.NoError(t, b.Apply(ctx, batch))

	selected, err = b.GetAll(ctx, types.CollectionSelectedTags)
	require.NoError(t, err)
	assert.Empty(t, selected)
	weights, err := b.GetAll(ctx, types.CollectionTagWeights)
	require.NoError(t, err)
	assert.Empty(t, weights)

	assert.NoError(t, b.Apply(ctx, types.NewBatch()), "empty batch is a no-op")
}

func TestStore_ApplyRestoresFilesWhenAReplaceFails(t *testing.T) {
	ctx := context.Background()
	b, dir := attachTestBackend(t)
	require.NoError(t, b.Put(ctx, types.CollectionTags, tag("1", "cat", "animals", "pets")))
	require.NoError(t, b.Put(ctx, types.CollectionTagWeights, &types.Weight{ID: "1", Value: 2}))

	tagsPath := collectionPath(dir, types.CollectionTags)
	weightsPath := collectionPath(dir, types.CollectionTagWeights)
	tagsBefore, err := os.ReadFile(tagsPath)
	require.NoError(t, err)
	weightsBefore, err := os.ReadFile(weightsPath)
	require.NoError(t, err)

	// tags.jsonl is replaced first; the weights file then refuses its new
	// content.
	errDiskFull := errors.New("disk full")
	rename = func(from, to string) error {
		if to == weightsPath && strings.HasSuffix(from, ".tmp") {
			return errDiskFull
		}
		return os.Rename(from, to)
	}
	t.Cleanup(func() { rename = os.Rename })

	batch := types.NewBatch().
		Put(types.CollectionTags, tag("2", "dog", "animals", "pets")).
		Put(types.CollectionTagWeights, &types.Weight{ID: "1", Value: 3})
	err = b.Apply(ctx, batch)
	require.Error(t, err)
	assert.True(t, errs.IsStorageUnavailable(err))
	assert.ErrorIs(t, err, errDiskFull)

	tags, err := b.GetAll(ctx, types.CollectionTags)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, tagIDs(t, tags))
	weights, err := b.GetAll(ctx, types.CollectionTagWeights)
	require.NoError(t, err)
	assert.Equal(t, []any{&types.Weight{ID: "1", Value: 2}}, weights)

	tagsAfter, err := os.ReadFile(tagsPath)
	require.NoError(t, err)
	assert.Equal(t, string(tagsBefore), string(tagsAfter))
	weightsAfter, err := os.ReadFile(weightsPath)
	require.NoError(t, err)
	assert.Equal(t, string(weightsBefore), string(weightsAfter))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp") || strings.HasSuffix(e.Name(), ".orig"), "leftover %s", e.Name())
	}

	// With the file system healthy again the same batch lands in both.
	rename = os.Rename
	require.NoError(t, b.Apply(ctx, batch))
	tags, err = b.GetAll(ctx, types.CollectionTags)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, tagIDs(t, tags))
}

func TestStore_WriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	b, dir := attachTestBackend(t)
	require.NoError(t, b.Put(ctx, types.CollectionTags, tag("1", "cat", "animals", "pets")))

	// Without its data dir the backend cannot stage the JSONL file.
	require.NoError(t, os.RemoveAll(dir))

	err := b.Put(ctx, types.CollectionTags, tag("2", "dog", "animals", "pets"))
	require.Error(t, err)
	assert.True(t, errs.IsStorageUnavailable(err))

	records, err := b.GetAll(ctx, types.CollectionTags)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, tagIDs(t, records))
}

func TestStore_TagsByCategory(t *testing.T) {
	ctx := context.Background()
	b, _ := attachTestBackend(t)

	for _, tg := range []*types.Tag{
		tag("1", "cat", "animals", "pets"),
		tag("2", "owl", "animals", "birds"),
		tag("3", "dog", "animals", "pets"),
		tag("4", "ant", "animalsX", "pets"),
		tag("5", "oak", "plants", "trees"),
	} {
		require.NoError(t, b.Put(ctx, types.CollectionTags, tg))
	}

	tests := []struct {
		name string
		main string
		sub  string
		want []string
	}{
		{"main only spans every sub", "animals", "", []string{"1", "2", "3"}},
		{"exact pair", "animals", "pets", []string{"1", "3"}},
		{"unknown sub", "animals", "fish", nil},
		{"unknown main", "fungi", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, err := b.TagsByCategory(ctx, tt.main, tt.sub)
			require.NoError(t, err)
			var ids []string
			for _, tg := range tags {
				ids = append(ids, tg.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_JSONLHasNoTempFilesAfterWrite(t *testing.T) {
	ctx := context.Background()
	b, dir := attachTestBackend(t)
	require.NoError(t, b.Put(ctx, types.CollectionTags, tag("1", "cat", "animals", "pets")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}
