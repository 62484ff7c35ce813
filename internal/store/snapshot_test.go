package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileSnapshotter_RoundTrip(t *testing.T) {
	snap, err := NewFileSnapshotter(t.TempDir())
	assert.NoError(t, err)

	in := map[string]int{"a": 1, "b": 2}
	assert.NoError(t, snap.Save("sample", in))

	var out map[string]int
	assert.NoError(t, snap.Load("sample", &out))
	assert.Equal(t, in, out)
}

func TestFileSnapshotter_MissingDocument(t *testing.T) {
	snap, err := NewFileSnapshotter(t.TempDir())
	assert.NoError(t, err)

	var out map[string]int
	assert.ErrorIs(t, snap.Load("absent", &out), ErrNoSnapshot)
}

func TestFileSnapshotter_WritesPrettyJSON(t *testing.T) {
	dir := t.TempDir()
	snap, err := NewFileSnapshotter(dir)
	assert.NoError(t, err)

	assert.NoError(t, snap.Save("doc", map[string]string{"key": "value"}))

	raw, err := os.ReadFile(filepath.Join(dir, "doc.json"))
	assert.NoError(t, err)
	assert.Contains(t, string(raw), "\n", "snapshot files are human-readable")
}
