package types

import "errors"

// Mutation operations carried by a Batch.
const (
	OpPut     = "put"
	OpDelete  = "delete"
	OpReplace = "replace"
)

// Mutation is one step of a Batch.
type Mutation struct {
	Op         string // OpPut, OpDelete or OpReplace.
	Collection string // Target collection name.
	Key        string // Record key for OpDelete.
	Record     any    // Record for OpPut.
	Records    []any  // Full contents for OpReplace.
}

// Batch collects mutations across collections so a backend can apply them
// atomically. Mutations run in the order they were added.
type Batch struct {
	mutations []Mutation
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Put queues an upsert.
func (b *Batch) Put(collection string, record any) *Batch {
	b.mutations = append(b.mutations, Mutation{Op: OpPut, Collection: collection, Record: record})
	return b
}

// Delete queues a delete by key.
func (b *Batch) Delete(collection, key string) *Batch {
	b.mutations = append(b.mutations, Mutation{Op: OpDelete, Collection: collection, Key: key})
	return b
}

// Replace queues a clear-and-replace of the whole collection.
func (b *Batch) Replace(collection string, records []any) *Batch {
	b.mutations = append(b.mutations, Mutation{Op: OpReplace, Collection: collection, Records: records})
	return b
}

// Mutations returns the queued mutations in order.
func (b *Batch) Mutations() []Mutation {
	return b.mutations
}

// Len returns the number of queued mutations.
func (b *Batch) Len() int {
	return len(b.mutations)
}

// Collections returns the distinct collections touched by the batch in
// first-touch order.
func (b *Batch) Collections() []string {
	seen := make(map[string]bool, len(b.mutations))
	var out []string
	for _, m := range b.mutations {
		if !seen[m.Collection] {
			seen[m.Collection] = true
			out = append(out, m.Collection)
		}
	}
	return out
}

// Record errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
)

// Entity and selection errors.
var (
	ErrInvalidName     = errors.New("invalid name")
	ErrDuplicateName   = errors.New("name already exists")
	ErrInvalidImageURL = errors.New("invalid image URL")
	ErrInvalidWeight   = errors.New("weight must be an integer from 0 to 100")
	ErrInvalidDelta    = errors.New("weight delta must be +1 or -1")
	ErrInvalidIndex    = errors.New("index out of range")
	ErrInvalidOrder    = errors.New("order must be a permutation of the selection")
	ErrNotSelected     = errors.New("tag is not selected")
)
