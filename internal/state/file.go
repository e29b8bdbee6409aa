package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	stateDirPerms  = 0o755
	stateFilePerms = 0o644
)

// FileStore is a [Store] backed by a single JSON file holding a flat
// string-to-string object.
//
// The file is rewritten in full on every Save. The parent directory is
// created on demand, so the configured path does not need to exist ahead
// of time.
type FileStore struct {
	path string
}

// NewFileStore creates a [FileStore] persisting to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and parses the state file.
//
// A missing file yields an empty mapping and no error. Any other read or
// parse failure yields an empty mapping and an error; callers treat this
// as a warning, not a fatal condition, since the worst case is one
// re-notification per target after restart.
func (f *FileStore) Load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return map[string]string{}, fmt.Errorf("failed to read state file %s: %w", f.path, err)
	}

	var statuses map[string]string
	if err := json.Unmarshal(data, &statuses); err != nil {
		return map[string]string{}, fmt.Errorf("failed to parse state file %s: %w", f.path, err)
	}
	if statuses == nil {
		statuses = map[string]string{}
	}
	return statuses, nil
}

// Save serializes the mapping as indented JSON and overwrites the state
// file, creating the parent directory if needed.
func (f *FileStore) Save(statuses map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), stateDirPerms); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(statuses, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(f.path, data, stateFilePerms); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", f.path, err)
	}
	return nil
}
