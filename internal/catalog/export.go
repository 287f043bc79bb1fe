package catalog

import (
	"log/slog"

	"github.com/mesh-intelligence/tagshelf/internal/clipboard"
)

// ExportString renders the selection in order with each name wrapped in as
// many brace pairs as its weight, for example "{{cat}}, dog".
func (c *Catalog) ExportString() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sel.Encode()
}

// CopyExport writes ExportString to w and reports whether the copy
// succeeded. A failed copy is logged and otherwise ignored.
func (c *Catalog) CopyExport(w clipboard.Writer) (string, bool) {
	text := c.ExportString()
	ok, err := clipboard.Copy(w, text)
	if err != nil {
		c.logger.Debug("clipboard write failed", slog.String("error", err.Error()))
	}
	return text, ok
}
