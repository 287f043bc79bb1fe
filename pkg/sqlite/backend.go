// Package sqlite provides the public API for the SQLite tag store.
// This package exposes the factory functions while keeping implementation
// details internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/tagshelf/internal/sqlite"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// NewBackend creates a new SQLite store instance.
// The store is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend(slog.Default())
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".tagshelf-db",
//	})
//	defer store.Detach()
func NewBackend(logger *slog.Logger) types.Store {
	b := sqlite.NewBackend()
	b.SetLogger(logger)
	return b
}

// DefaultCatalog returns the built-in tags and categories used to seed an
// empty store.
func DefaultCatalog() ([]types.Tag, []types.Category, error) {
	return sqlite.DefaultCatalog()
}
