package sqlite

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// SchemaVersion is the on-disk layout version written to manifest.json.
// Opening a data directory written with a different version discards its
// collections and lets the caller reseed.
const SchemaVersion = 1

const manifestFileName = "manifest.json"

type manifest struct {
	SchemaVersion int `json:"schema_version"`
}

// checkManifest reads dataDir/manifest.json. A missing manifest is created.
// On a version mismatch the JSONL files are removed and the manifest is
// rewritten. A manifest that cannot be parsed is an error; the data is left
// untouched.
func checkManifest(dataDir string, logger *slog.Logger) error {
	path := filepath.Join(dataDir, manifestFileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return writeManifest(path)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", manifestFileName, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parsing %s: %w", manifestFileName, err)
	}
	if m.SchemaVersion == SchemaVersion {
		return nil
	}

	logger.Warn("schema version changed, discarding stored collections",
		slog.Int("found", m.SchemaVersion),
		slog.Int("want", SchemaVersion),
		slog.String("data_dir", dataDir))
	if err := removeJSONLFiles(dataDir); err != nil {
		return err
	}
	return writeManifest(path)
}

func writeManifest(path string) error {
	data, err := json.Marshal(manifest{SchemaVersion: SchemaVersion})
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", manifestFileName, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", manifestFileName, err)
	}
	return nil
}
