package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/mesh-intelligence/tagshelf/internal/catalog"
	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/internal/paths"
	"github.com/mesh-intelligence/tagshelf/pkg/sqlite"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// newLogger returns a text logger on w at level.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// resolveDataDir applies flag > config.yaml > env > default.
func (a *app) resolveDataDir() (string, error) {
	dir, err := paths.ResolveDataDir(a.flags.dataDir, a.settings.DataDir, a.flags.global)
	if err != nil {
		return "", errs.Wrap(err, errs.CodeConfigInvalid, "resolve data dir")
	}
	return dir, nil
}

// openCatalog attaches a SQLite store in the data directory, seeds it with
// the built-in catalog when empty, and loads the mirror. The caller must
// call the returned close function.
func (a *app) openCatalog(ctx context.Context) (*catalog.Catalog, func(), error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, nil, err
	}

	store := sqlite.NewBackend(a.logger)
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dataDir}
	if err := store.Attach(cfg); err != nil {
		return nil, nil, errs.Storage(err, "attach store", errs.Field("data_dir", dataDir))
	}
	closeFn := func() {
		if err := store.Detach(); err != nil {
			a.logger.Warn("detach store failed", slog.String("error", err.Error()))
		}
	}

	tags, categories, err := sqlite.DefaultCatalog()
	if err != nil {
		closeFn()
		return nil, nil, errs.Storage(err, "read default catalog")
	}

	c := catalog.New(store,
		catalog.WithLogger(a.logger),
		catalog.WithDeletePolicy(a.settings.DeletePolicy),
		catalog.WithSearch(a.settings.Search),
	)
	if err := c.Seed(ctx, tags, categories); err != nil {
		closeFn()
		return nil, nil, err
	}
	if err := c.Load(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return c, closeFn, nil
}

// withCatalog opens the catalog, runs fn, and closes the catalog.
func (a *app) withCatalog(ctx context.Context, fn func(c *catalog.Catalog) error) error {
	c, closeFn, err := a.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(c)
}
