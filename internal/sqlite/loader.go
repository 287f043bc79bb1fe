package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// loadAllJSONL reads each collection's JSONL file and inserts its records
// into SQLite. Loading is transactional: all collections load or the
// database stays empty. Malformed lines and records that fail validation are
// skipped and reported through logger; unknown JSON fields are ignored. When
// a key appears twice, the later line wins and keeps the earlier position.
func loadAllJSONL(db *sql.DB, dataDir string, logger *slog.Logger) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range types.StandardCollections {
		raws, skipped, err := readJSONL(collectionPath(dataDir, c))
		if err != nil {
			return fmt.Errorf("reading %s: %w", collectionFiles[c], err)
		}

		for _, raw := range raws {
			rec, err := decodeRecord(c, raw)
			if err != nil {
				skipped++
				continue
			}
			if err := putRecord(ctx, tx, c, rec); err != nil {
				skipped++
				continue
			}
		}

		if skipped > 0 {
			logger.Warn("skipped unreadable records",
				slog.String("file", collectionFiles[c]),
				slog.Int("count", skipped))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}
