package catalog

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tagshelf/internal/clipboard"
	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

func TestCatalog_Selection(t *testing.T) {
	ctx := context.Background()
	cat, dog, owl := testTags()[0], testTags()[1], testTags()[2]

	tests := []struct {
		name  string
		setup func(t *testing.T, c *Catalog)
		check func(t *testing.T, c *Catalog)
	}{
		{
			name: "select twice keeps one entry",
			setup: func(t *testing.T, c *Catalog) {
				require.NoError(t, c.Select(ctx, cat))
				require.NoError(t, c.Select(ctx, cat))
			},
			check: func(t *testing.T, c *Catalog) {
				assert.Equal(t, []string{"1"}, tagIDs(c.ListSelectedTags()))
				assert.Equal(t, types.Weights{"1": 0}, c.ListWeights())
			},
		},
		{
			name: "select by id and manual text",
			setup: func(t *testing.T, c *Catalog) {
				_, err := c.SelectByID(ctx, "2")
				require.NoError(t, err)
				_, err = c.SelectManual(ctx, " golden hour ")
				require.NoError(t, err)
			},
			check: func(t *testing.T, c *Catalog) {
				selected := c.ListSelectedTags()
				require.Len(t, selected, 2)
				assert.Equal(t, "2", selected[0].ID)
				assert.Equal(t, "golden hour", selected[1].Name)
				assert.True(t, selected[1].IsManual())
				assert.Equal(t, "dog, golden hour", c.ExportString())
			},
		},
		{
			name: "deselect prunes the weight",
			setup: func(t *testing.T, c *Catalog) {
				require.NoError(t, c.Select(ctx, cat))
				require.NoError(t, c.Select(ctx, dog))
				require.NoError(t, c.SetWeight(ctx, "1", 4))
				require.NoError(t, c.Deselect(ctx, "1"))
				require.NoError(t, c.Deselect(ctx, "1"))
			},
			check: func(t *testing.T, c *Catalog) {
				assert.Equal(t, []string{"2"}, tagIDs(c.ListSelectedTags()))
				assert.Equal(t, types.Weights{"2": 0}, c.ListWeights())
			},
		},
		{
			name: "weights clamp at zero",
			setup: func(t *testing.T, c *Catalog) {
				require.NoError(t, c.Select(ctx, cat))
				n, err := c.AdjustWeight(ctx, "1", -1)
				require.NoError(t, err)
				assert.Equal(t, 0, n)
				require.NoError(t, c.SetWeight(ctx, "1", -7))
				_, err = c.AdjustWeight(ctx, "1", 1)
				require.NoError(t, err)
				_, err = c.AdjustWeight(ctx, "1", 1)
				require.NoError(t, err)
			},
			check: func(t *testing.T, c *Catalog) {
				assert.Equal(t, types.Weights{"1": 2}, c.ListWeights())
			},
		},
		{
			name: "export encodes weights",
			setup: func(t *testing.T, c *Catalog) {
				require.NoError(t, c.Select(ctx, cat))
				require.NoError(t, c.Select(ctx, dog))
				require.NoError(t, c.SetWeight(ctx, "1", 2))
			},
			check: func(t *testing.T, c *Catalog) {
				assert.Equal(t, "{{cat}}, dog", c.ExportString())
			},
		},
		{
			name: "move and reorder",
			setup: func(t *testing.T, c *Catalog) {
				for _, tg := range testTags() {
					require.NoError(t, c.Select(ctx, tg))
				}
				require.NoError(t, c.Move(ctx, 0, 3))
				require.NoError(t, c.Move(ctx, 3, 0))
				require.NoError(t, c.Reorder(ctx, []string{"4", "3", "2", "1"}))
				require.NoError(t, c.Move(ctx, 1, 1))
			},
			check: func(t *testing.T, c *Catalog) {
				assert.Equal(t, []string{"4", "3", "2", "1"}, tagIDs(c.ListSelectedTags()))
			},
		},
		{
			name: "clear all empties both",
			setup: func(t *testing.T, c *Catalog) {
				require.NoError(t, c.Select(ctx, cat))
				require.NoError(t, c.Select(ctx, owl))
				require.NoError(t, c.SetWeight(ctx, "3", 1))
				require.NoError(t, c.ClearAll(ctx))
			},
			check: func(t *testing.T, c *Catalog) {
				assert.Empty(t, c.ListSelectedTags())
				assert.Empty(t, c.ListWeights())
				assert.Equal(t, "", c.ExportString())
			},
		},
		{
			name: "update selected tags keeps surviving weights",
			setup: func(t *testing.T, c *Catalog) {
				require.NoError(t, c.Select(ctx, cat))
				require.NoError(t, c.Select(ctx, dog))
				require.NoError(t, c.SetWeight(ctx, "1", 2))
				require.NoError(t, c.SetWeight(ctx, "2", 3))
				require.NoError(t, c.UpdateSelectedTags(ctx, []types.Tag{owl, cat}))
			},
			check: func(t *testing.T, c *Catalog) {
				assert.Equal(t, []string{"3", "1"}, tagIDs(c.ListSelectedTags()))
				assert.Equal(t, types.Weights{"3": 0, "1": 2}, c.ListWeights())
			},
		},
		{
			name: "update tag weights",
			setup: func(t *testing.T, c *Catalog) {
				require.NoError(t, c.Select(ctx, cat))
				require.NoError(t, c.Select(ctx, dog))
				require.NoError(t, c.UpdateTagWeights(ctx, types.Weights{"2": 5, "1": -1}))
			},
			check: func(t *testing.T, c *Catalog) {
				assert.Equal(t, types.Weights{"1": 0, "2": 5}, c.ListWeights())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, stub := newTestCatalog(t)
			tt.setup(t, c)
			tt.check(t, c)

			persisted := reload(t, stub)
			assert.Equal(t, c.ListSelectedTags(), persisted.ListSelectedTags())
			assert.Equal(t, c.ListWeights(), persisted.ListWeights())
			assertConsistent(t, c, stub)
		})
	}
}

func TestCatalog_SelectionErrors(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog(t)
	require.NoError(t, c.Select(ctx, testTags()[0]))

	tests := []struct {
		name  string
		run   func() error
		check func(error) bool
	}{
		{"set weight on unselected id", func() error { return c.SetWeight(ctx, "2", 1) }, errs.IsNotFound},
		{"adjust weight on unselected id", func() error { _, err := c.AdjustWeight(ctx, "2", 1); return err }, errs.IsNotFound},
		{"update weights for unselected id", func() error { return c.UpdateTagWeights(ctx, types.Weights{"2": 1}) }, errs.IsNotFound},
		{"set weight above the maximum", func() error { return c.SetWeight(ctx, "1", math.MaxInt) }, errs.IsValidation},
		{"update weights above the maximum", func() error { return c.UpdateTagWeights(ctx, types.Weights{"1": types.MaxWeight + 1}) }, errs.IsValidation},
		{"adjust weight by more than one", func() error { _, err := c.AdjustWeight(ctx, "1", 5); return err }, errs.IsValidation},
		{"adjust weight by zero", func() error { _, err := c.AdjustWeight(ctx, "1", 0); return err }, errs.IsValidation},
		{"hold with zero delta", func() error { _, err := c.HoldWeight(ctx, "1", 0, time.Millisecond); return err }, errs.IsValidation},
		{"select unknown id", func() error { _, err := c.SelectByID(ctx, "99"); return err }, errs.IsNotFound},
		{"select tag without id", func() error { return c.Select(ctx, types.Tag{Name: "x"}) }, errs.IsValidation},
		{"blank manual text", func() error { _, err := c.SelectManual(ctx, "  "); return err }, errs.IsValidation},
		{"move out of range", func() error { return c.Move(ctx, 0, 5) }, errs.IsValidation},
		{"reorder with unknown id", func() error { return c.Reorder(ctx, []string{"9"}) }, errs.IsValidation},
		{"reorder with missing id", func() error { return c.Reorder(ctx, []string{}) }, errs.IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}

	assert.Equal(t, []string{"1"}, tagIDs(c.ListSelectedTags()))
	assert.Equal(t, types.Weights{"1": 0}, c.ListWeights())
}

func TestCatalog_SelectionWriteFailure(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		run  func(c *Catalog) error
	}{
		{"select", func(c *Catalog) error { return c.Select(ctx, testTags()[1]) }},
		{"deselect", func(c *Catalog) error { return c.Deselect(ctx, "1") }},
		{"set weight", func(c *Catalog) error { return c.SetWeight(ctx, "1", 9) }},
		{"adjust weight", func(c *Catalog) error { _, err := c.AdjustWeight(ctx, "1", 1); return err }},
		{"move", func(c *Catalog) error { return c.Move(ctx, 0, 1) }},
		{"clear", func(c *Catalog) error { return c.ClearAll(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, stub := newTestCatalog(t)
			require.NoError(t, c.Select(ctx, testTags()[0]))
			require.NoError(t, c.Select(ctx, testTags()[2]))
			require.NoError(t, c.SetWeight(ctx, "1", 1))
			stub.failWrites(errDiskFull)

			err := tt.run(c)
			require.Error(t, err)
			assert.True(t, errs.IsStorageUnavailable(err))
			assert.ErrorIs(t, err, errDiskFull)

			assert.Equal(t, []string{"1", "3"}, tagIDs(c.ListSelectedTags()))
			assert.Equal(t, types.Weights{"1": 1, "3": 0}, c.ListWeights())
		})
	}
}

func TestCatalog_HoldWeight(t *testing.T) {
	ctx := context.Background()
	c, stub := newTestCatalog(t)
	require.NoError(t, c.Select(ctx, testTags()[0]))

	r, err := c.HoldWeight(ctx, "1", 1, 5*time.Millisecond)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return c.ListWeights()["1"] >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, r.Stop())

	held := c.ListWeights()["1"]
	assert.Equal(t, r.Count(), held)
	assert.Equal(t, held, reload(t, stub).ListWeights()["1"])

	down, err := c.HoldWeight(ctx, "1", -1, time.Millisecond)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return c.ListWeights()["1"] == 0 }, time.Second, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, down.Stop())
	assert.Equal(t, 0, c.ListWeights()["1"], "never below zero")

	_, err = c.HoldWeight(ctx, "2", 1, time.Millisecond)
	assert.True(t, errs.IsNotFound(err))
}

func TestCatalog_WeightCeiling(t *testing.T) {
	ctx := context.Background()
	c, stub := newTestCatalog(t)
	require.NoError(t, c.Select(ctx, testTags()[0]))
	require.NoError(t, c.SetWeight(ctx, "1", types.MaxWeight))

	n, err := c.AdjustWeight(ctx, "1", 1)
	require.NoError(t, err)
	assert.Equal(t, types.MaxWeight, n)

	r, err := c.HoldWeight(ctx, "1", 1, time.Millisecond)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return r.Count() >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, r.Stop())

	want := strings.Repeat("{", types.MaxWeight) + "cat" + strings.Repeat("}", types.MaxWeight)
	assert.NotPanics(t, func() { assert.Equal(t, want, c.ExportString()) })
	assert.Equal(t, types.MaxWeight, reload(t, stub).ListWeights()["1"])
}

func TestCatalog_HoldWeightStopsOnFailure(t *testing.T) {
	ctx := context.Background()
	c, stub := newTestCatalog(t)
	require.NoError(t, c.Select(ctx, testTags()[0]))
	stub.failWrites(errDiskFull)

	r, err := c.HoldWeight(ctx, "1", 1, time.Millisecond)
	require.NoError(t, err)
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("hold kept running after a failed write")
	}
	assert.True(t, errs.IsStorageUnavailable(r.Stop()))
	assert.Equal(t, 0, c.ListWeights()["1"])
}

func TestCatalog_CopyExport(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog(t)
	require.NoError(t, c.Select(ctx, testTags()[0]))
	require.NoError(t, c.SetWeight(ctx, "1", 1))

	var copied string
	text, ok := c.CopyExport(clipboard.Func(func(s string) error { copied = s; return nil }))
	assert.True(t, ok)
	assert.Equal(t, "{cat}", text)
	assert.Equal(t, "{cat}", copied)

	text, ok = c.CopyExport(clipboard.Func(func(string) error { return errDiskFull }))
	assert.False(t, ok)
	assert.Equal(t, "{cat}", text)
}
