// Package sqlite implements the tagshelf Store on top of SQLite.
//
// JSONL files in the data directory are the source of truth: one file per
// collection. SQLite is the query engine; its database file is recreated on
// every Attach and loaded from the JSONL files. Each write runs in a SQL
// transaction and stages the affected JSONL files before it commits.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// dbFileName is the SQLite file kept next to the JSONL files.
const dbFileName = "tagshelf.db"

var _ types.Store = (*Backend)(nil)

// Backend implements types.Store using SQLite as the query engine and JSONL
// files as the durable copy.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB
	logger   *slog.Logger
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{logger: slog.Default()}
}

// SetLogger replaces the logger used for recoverable load warnings.
func (b *Backend) SetLogger(l *slog.Logger) {
	if l != nil {
		b.logger = l
	}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, checks the schema manifest,
// creates a fresh SQLite schema, and loads every JSONL file into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return errs.Wrap(err, errs.CodeConfigInvalid, "validate store config")
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return errs.Wrap(err, errs.CodeStoreAttachFailure, "create data dir", errs.Field("data_dir", dataDir))
	}

	if err := checkManifest(dataDir, b.logger); err != nil {
		return errs.Storage(err, "check schema manifest", errs.Field("data_dir", dataDir))
	}
	if err := initJSONLFiles(dataDir); err != nil {
		return errs.Wrap(err, errs.CodeStoreAttachFailure, "initialize JSONL files")
	}

	// The database is a cache of the JSONL files; start from an empty one.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return errs.Wrap(err, errs.CodeStoreAttachFailure, "open database")
	}
	// One connection: writes are serialized by b.mu and SQLite gains nothing
	// from a pool on a single file.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return errs.Wrap(err, errs.CodeStoreAttachFailure, "create schema")
	}

	if err := loadAllJSONL(db, dataDir, b.logger); err != nil {
		db.Close()
		return errs.Wrap(err, errs.CodeStoreAttachFailure, "load JSONL")
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.attached = true
	return nil
}

// Detach releases all resources held by the backend.
// After Detach, all operations return ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return errs.Storage(err, "close database")
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// DataDir returns the directory the backend is attached to.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dataDir
}

// checkAttached returns a StorageUnavailable error when the backend is not
// attached. The caller must hold b.mu.
func (b *Backend) checkAttached(op string) error {
	if !b.attached {
		return errs.Wrap(types.ErrStoreDetached, errs.CodeStoreUnavailable, op)
	}
	return nil
}

// createSchema executes every DDL statement.
func createSchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("executing index DDL: %w", err)
		}
	}
	return nil
}

// withTx runs fn in a transaction and stages the JSONL files of the
// touched collections from inside it. The staged files are swapped into
// place before the commit, keeping the previous files as backups; if a swap
// or the commit fails, every swapped file is restored and the transaction
// rolls back, so a batch lands in all of its collections or in none.
// The caller must hold b.mu write lock.
func (b *Backend) withTx(ctx context.Context, collections []string, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	staged := make([]*stagedFile, 0, len(collections))
	defer func() {
		for _, s := range staged {
			s.discard()
		}
	}()
	for _, c := range collections {
		records, err := queryCollection(ctx, tx, c)
		if err != nil {
			return err
		}
		s, err := stageJSONL(collectionPath(b.dataDir, c), records)
		if err != nil {
			return fmt.Errorf("staging %s: %w", collectionFiles[c], err)
		}
		staged = append(staged, &s)
	}

	for i, s := range staged {
		if err := s.swap(); err != nil {
			b.restoreFiles(staged[:i])
			return fmt.Errorf("replacing %s: %w", s.path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		b.restoreFiles(staged)
		return fmt.Errorf("committing transaction: %w", err)
	}
	for _, s := range staged {
		s.release()
	}
	return nil
}

// restoreFiles undoes swaps in reverse order. A file that cannot be
// restored is logged; the SQL state still rolls back.
func (b *Backend) restoreFiles(swapped []*stagedFile) {
	for i := len(swapped) - 1; i >= 0; i-- {
		if err := swapped[i].restore(); err != nil {
			b.logger.Error("restoring collection file", slog.String("path", swapped[i].path), slog.Any("error", err))
		}
	}
}
