package types

import (
	"context"
	"errors"
)

// Store defines the interface for durable access to the four catalog
// collections. Callers attach to a backend, read and mutate collections by
// name, and detach when done.
//
// Records are passed as any, matching the collection: *Tag for tags and
// selected_tags, *Category for categories, *Weight for tag_weights.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrStoreDetached.
	Detach() error

	// GetAll returns every record in the collection in stored order.
	// An empty collection yields an empty, non-nil slice.
	GetAll(ctx context.Context, collection string) ([]any, error)

	// Put upserts a record by its key.
	Put(ctx context.Context, collection string, record any) error

	// Delete removes the record with the given key. Missing keys are a no-op.
	Delete(ctx context.Context, collection, key string) error

	// ClearAndReplace removes every record in the collection and inserts
	// records in order, as one atomic unit.
	ClearAndReplace(ctx context.Context, collection string, records []any) error

	// Apply executes all mutations of the batch in a single transaction.
	// Either every mutation is durable or none is.
	Apply(ctx context.Context, batch *Batch) error

	// InitializeIfEmpty seeds tags and categories, each only when its
	// collection is currently empty.
	InitializeIfEmpty(ctx context.Context, tags []Tag, categories []Category) error

	// TagsByCategory returns the tags filed under main. An empty sub matches
	// every subcategory; otherwise only the exact (main, sub) pair matches.
	TagsByCategory(ctx context.Context, main, sub string) ([]Tag, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached     = errors.New("store is detached")
	ErrAlreadyAttached   = errors.New("store is already attached")
	ErrUnknownCollection = errors.New("unknown collection")
)
