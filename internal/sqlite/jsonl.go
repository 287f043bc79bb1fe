package sqlite

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// collectionFiles maps each collection to its JSONL file name.
var collectionFiles = map[string]string{
	types.CollectionTags:         "tags.jsonl",
	types.CollectionCategories:   "categories.jsonl",
	types.CollectionSelectedTags: "selected_tags.jsonl",
	types.CollectionTagWeights:   "tag_weights.jsonl",
}

// collectionPath returns the JSONL path for a collection in dataDir.
func collectionPath(dataDir, collection string) string {
	return filepath.Join(dataDir, collectionFiles[collection])
}

// initJSONLFiles creates an empty JSONL file for every collection that does
// not have one yet.
func initJSONLFiles(dataDir string) error {
	for _, c := range types.StandardCollections {
		path := collectionPath(dataDir, c)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}

// removeJSONLFiles deletes every collection file. Missing files are ignored.
func removeJSONLFiles(dataDir string) error {
	for _, c := range types.StandardCollections {
		if err := os.Remove(collectionPath(dataDir, c)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", collectionFiles[c], err)
		}
	}
	return nil
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped and counted.
func readJSONL(path string) ([]json.RawMessage, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	skipped := 0
	scanner := bufio.NewScanner(f)
	// Inline data-URL images can make a single tag line large.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			skipped++
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, skipped, nil
}

// rename moves files into place. Tests replace it to simulate a failing
// file system.
var rename = os.Rename

// stagedFile is a fully written and synced temp file waiting to replace
// path. After swap, backup holds the previous content of path, if any.
type stagedFile struct {
	tmp    string
	path   string
	backup string
}

// swap moves the current file aside and the temp file into its place.
// On failure path is left as it was.
func (s *stagedFile) swap() error {
	if _, err := os.Stat(s.path); err == nil {
		backup := s.tmp + ".orig"
		if err := rename(s.path, backup); err != nil {
			return err
		}
		s.backup = backup
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := rename(s.tmp, s.path); err != nil {
		s.restore()
		return err
	}
	return nil
}

// restore puts the previous content of path back after a swap.
func (s *stagedFile) restore() error {
	if s.backup == "" {
		return os.Remove(s.path)
	}
	if err := rename(s.backup, s.path); err != nil {
		return err
	}
	s.backup = ""
	return nil
}

// release drops the backup once the swap is final.
func (s *stagedFile) release() {
	if s.backup != "" {
		os.Remove(s.backup)
		s.backup = ""
	}
}

// discard removes the temp file.
func (s *stagedFile) discard() {
	os.Remove(s.tmp)
}

// stageJSONL marshals records one per line into a temp file beside path and
// syncs it. The destination is untouched until commit.
func stageJSONL(path string, records []any) (stagedFile, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return stagedFile{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) (stagedFile, error) {
		tmp.Close()
		os.Remove(tmpName)
		return stagedFile{}, err
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		// Encode appends the newline that terminates each JSONL record.
		if err := enc.Encode(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return stagedFile{}, fmt.Errorf("closing temp file: %w", err)
	}
	return stagedFile{tmp: tmpName, path: path}, nil
}
