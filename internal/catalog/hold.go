package catalog

import (
	"context"
	"time"

	"github.com/mesh-intelligence/tagshelf/internal/repeat"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// HoldWeight starts press-and-hold adjustment of a selected id: delta, +1
// or -1, is applied once right away and again every interval until the returned
// Repeater is stopped, ctx is cancelled, or an adjustment fails. The id must
// be selected when the hold starts.
func (c *Catalog) HoldWeight(ctx context.Context, id string, delta int, interval time.Duration) (*repeat.Repeater, error) {
	if delta != 1 && delta != -1 {
		return nil, c.fail("hold weight", weightError(types.ErrInvalidDelta, id, delta))
	}
	c.mu.RLock()
	selected := c.sel.Contains(id)
	c.mu.RUnlock()
	if !selected {
		return nil, c.fail("hold weight", notSelected(types.ErrNotSelected, id))
	}

	return repeat.Start(ctx, interval, func(ctx context.Context) error {
		_, err := c.AdjustWeight(ctx, id, delta)
		return err
	}), nil
}
