package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/internal/sqlite"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

var errDiskFull = errors.New("disk full")

// storeStub wraps a real store and fails writes or reads on demand.
type storeStub struct {
	types.Store

	mu       sync.Mutex
	writeErr error
	readErr  error
	writes   int
}

func (s *storeStub) failWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func (s *storeStub) failReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

func (s *storeStub) write() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	return s.writeErr
}

func (s *storeStub) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *storeStub) GetAll(ctx context.Context, collection string) ([]any, error) {
	s.mu.Lock()
	err := s.readErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Store.GetAll(ctx, collection)
}

func (s *storeStub) Put(ctx context.Context, collection string, record any) error {
	if err := s.write(); err != nil {
		return err
	}
	return s.Store.Put(ctx, collection, record)
}

func (s *storeStub) Delete(ctx context.Context, collection, key string) error {
	if err := s.write(); err != nil {
		return err
	}
	return s.Store.Delete(ctx, collection, key)
}

func (s *storeStub) ClearAndReplace(ctx context.Context, collection string, records []any) error {
	if err := s.write(); err != nil {
		return err
	}
	return s.Store.ClearAndReplace(ctx, collection, records)
}

func (s *storeStub) Apply(ctx context.Context, batch *types.Batch) error {
	if err := s.write(); err != nil {
		return err
	}
	return s.Store.Apply(ctx, batch)
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testTags() []types.Tag {
	return []types.Tag{
		{ID: "1", Name: "cat", Translation: "猫", MainCategory: "animals", SubCategory: "pets"},
		{ID: "2", Name: "dog", Translation: "狗", MainCategory: "animals", SubCategory: "pets"},
		{ID: "3", Name: "owl", Translation: "猫头鹰", MainCategory: "animals", SubCategory: "birds"},
		{ID: "4", Name: "machine learning", Translation: "机器学习", MainCategory: "tech", SubCategory: "ai"},
	}
}

func testCategories() []types.Category {
	return []types.Category{
		{Main: "animals", Sub: []string{"pets", "birds"}},
		{Main: "tech", Sub: []string{"ai"}},
	}
}

// newTestCatalog returns a loaded catalog over a seeded SQLite store in a
// temp dir.
func newTestCatalog(t *testing.T, opts ...Option) (*Catalog, *storeStub) {
	t.Helper()
	b := sqlite.NewBackend()
	b.SetLogger(quietLogger)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })

	stub := &storeStub{Store: b}
	c := New(stub, append([]Option{WithLogger(quietLogger)}, opts...)...)
	require.NoError(t, c.Seed(context.Background(), testTags(), testCategories()))
	require.NoError(t, c.Load(context.Background()))
	return c, stub
}

// reload builds a second catalog over the same store to read what was
// persisted.
func reload(t *testing.T, stub *storeStub) *Catalog {
	t.Helper()
	c := New(stub.Store, WithLogger(quietLogger))
	require.NoError(t, c.Load(context.Background()))
	return c
}

func tagIDs(tags []types.Tag) []string {
	ids := []string{}
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// assertConsistent checks that every weight belongs to a selected id, in
// the mirror and in the store.
func assertConsistent(t *testing.T, c *Catalog, stub *storeStub) {
	t.Helper()
	for _, cat := range []*Catalog{c, reload(t, stub)} {
		selected := map[string]bool{}
		for _, tg := range cat.ListSelectedTags() {
			assert.False(t, selected[tg.ID], "duplicate selection %s", tg.ID)
			selected[tg.ID] = true
		}
		for id := range cat.ListWeights() {
			assert.True(t, selected[id], "weight for unselected id %s", id)
		}
	}
}

func TestCatalog_Load(t *testing.T) {
	c, _ := newTestCatalog(t)

	assert.Equal(t, []string{"1", "2", "3", "4"}, tagIDs(c.ListTags()))
	assert.Equal(t, testCategories(), c.ListCategories())
	assert.Empty(t, c.ListSelectedTags())
	assert.Empty(t, c.ListWeights())
}

func TestCatalog_LoadFailure(t *testing.T) {
	c, stub := newTestCatalog(t)
	stub.failReads(errDiskFull)

	err := c.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsStorageUnavailable(err))
	assert.Len(t, c.ListTags(), 4, "mirror kept after failed load")
}

func TestCatalog_ListsReturnCopies(t *testing.T) {
	c, _ := newTestCatalog(t)

	tags := c.ListTags()
	tags[0].Name = "changed"
	cats := c.ListCategories()
	cats[0].Sub[0] = "changed"

	tag, err := c.GetTag("1")
	require.NoError(t, err)
	assert.Equal(t, "cat", tag.Name)
	assert.Equal(t, "pets", c.ListCategories()[0].Sub[0])
}

func TestCatalog_TagsByCategory(t *testing.T) {
	c, _ := newTestCatalog(t)

	assert.Equal(t, []string{"1", "2", "3"}, tagIDs(c.TagsByCategory("animals", "")))
	assert.Equal(t, []string{"3"}, tagIDs(c.TagsByCategory("animals", "birds")))
	assert.Empty(t, c.TagsByCategory("plants", ""))
}

func TestCatalog_FailedWriteLogsWarning(t *testing.T) {
	var logs bytes.Buffer
	c, stub := newTestCatalog(t, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	stub.failWrites(errDiskFull)

	require.Error(t, c.Select(context.Background(), testTags()[0]))
	assert.Contains(t, logs.String(), "catalog write failed")
	assert.Contains(t, logs.String(), "op=select")
	assert.Contains(t, logs.String(), "code=store.unavailable")
}

func TestParseDeletePolicy(t *testing.T) {
	p, err := ParseDeletePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyCascade, p)

	p, err = ParseDeletePolicy("Orphan")
	require.NoError(t, err)
	assert.Equal(t, PolicyOrphan, p)

	_, err = ParseDeletePolicy("archive")
	assert.Error(t, err)
}
