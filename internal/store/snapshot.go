package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSnapshot is returned by Load when no document with the given name has
// been persisted yet. Stores treat it as "start from defaults".
var ErrNoSnapshot = errors.New("snapshot does not exist")

// Snapshotter is the persistence port the stores call on every mutation. The
// whole document is rewritten each time; there is no incremental format.
type Snapshotter interface {
	Save(name string, v any) error
	Load(name string, v any) error
}

// FileSnapshotter persists documents as pretty-printed JSON files under a base
// directory, one file per document name. Writes go through a temp file and
// rename so a crash mid-write never truncates the previous snapshot.
type FileSnapshotter struct {
	dir string
}

// NewFileSnapshotter ensures the base directory exists and returns a
// file-backed snapshotter rooted there.
func NewFileSnapshotter(dir string) (*FileSnapshotter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	return &FileSnapshotter{dir: dir}, nil
}

func (f *FileSnapshotter) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

// Save writes the document atomically.
func (f *FileSnapshotter) Save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp := f.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, f.path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// Load reads the document into v, or ErrNoSnapshot when the file is absent.
func (f *FileSnapshotter) Load(name string, v any) error {
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNoSnapshot
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
