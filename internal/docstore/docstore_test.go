package docstore

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndOpen(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("disposals", "evidence.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "disposals", filepath.Dir(rel))
	assert.True(t, strings.HasSuffix(rel, "_evidence.pdf"), "expected suffix _evidence.pdf, got %s", rel)

	f, err := store.Open(rel)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))
}

func TestSaveCollidingNames(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save("disposals", "evidence.pdf", strings.NewReader("first"))
	require.NoError(t, err)
	b, err := store.Save("disposals", "evidence.pdf", strings.NewReader("second"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSaveSanitizesName(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("uploads", "../../etc/pass wd?.pdf", strings.NewReader("x"))
	require.NoError(t, err)

	assert.Equal(t, "uploads", filepath.Dir(rel))
	assert.NotContains(t, rel, "..")
	assert.NotContains(t, filepath.Base(rel), " ")
	assert.NotContains(t, filepath.Base(rel), "?")
}

func TestOpenRejectsEscapingPaths(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("../outside.txt")
	assert.Error(t, err)

	_, err = store.Open("/etc/hosts")
	assert.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("disposals/nope.pdf")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveBytesAndRemove(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	rel, err := store.SaveBytes("documents", "note.pdf", []byte("generated"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(rel))

	_, err = store.Open(rel)
	assert.Error(t, err)

	// Removing twice is fine.
	assert.NoError(t, store.Remove(rel))
}
