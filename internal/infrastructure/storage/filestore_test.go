package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	root := t.TempDir()
	store := NewFileStore(filepath.Join(root, "labels"), filepath.Join(root, "bordereaux"))
	require.NoError(t, store.EnsureDirs())
	return store
}

// TestWriteAndReadLabel tests the label round trip
func TestWriteAndReadLabel(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteLabel("ORD-2024-0042", "pdf", []byte("%PDF-label")))

	assert.True(t, store.LabelExists("ORD-2024-0042", "pdf"))
	content, err := store.ReadLabel("ORD-2024-0042", "pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-label"), content)
}

// TestWriteLabelOverwrites tests that regeneration replaces the artifact
func TestWriteLabelOverwrites(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteLabel("ORD-1", "pdf", []byte("first")))
	require.NoError(t, store.WriteLabel("ORD-1", "pdf", []byte("second")))

	content, err := store.ReadLabel("ORD-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), content)
}

// TestWriteCustomsForm tests that the CN23 shares the label base name
func TestWriteCustomsForm(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteLabel("ORD-1", "pdf", []byte("label")))
	require.NoError(t, store.WriteCustomsForm("ORD-1", []byte("cn23")))

	assert.True(t, store.LabelExists("ORD-1", CustomsExtension))
	content, err := store.ReadLabel("ORD-1", CustomsExtension)
	require.NoError(t, err)
	assert.Equal(t, []byte("cn23"), content)
}

// TestRemoveByPrefix tests that label and customs form are removed together
func TestRemoveByPrefix(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteLabel("ORD-1", "pdf", []byte("label")))
	require.NoError(t, store.WriteCustomsForm("ORD-1", []byte("cn23")))
	require.NoError(t, store.WriteLabel("ORD-10", "pdf", []byte("other")))

	require.NoError(t, store.RemoveByPrefix("ORD-1"))

	assert.False(t, store.LabelExists("ORD-1", "pdf"))
	assert.False(t, store.LabelExists("ORD-1", CustomsExtension))
	// "ORD-1" must not swallow "ORD-10": the prefix includes the dot.
	assert.True(t, store.LabelExists("ORD-10", "pdf"))
}

// TestRemoveByPrefixMissing tests that removing absent artifacts is not an error
func TestRemoveByPrefixMissing(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.RemoveByPrefix("NEVER-WRITTEN"))
}

// TestBordereauName tests the canonical manifest file name
func TestBordereauName(t *testing.T) {
	at := time.Date(2024, 3, 18, 17, 30, 5, 0, time.UTC)

	assert.Equal(t, "bordereau_2024-03-18_17-30-05.pdf", BordereauName(at))
}

// TestWriteAndReadBordereau tests the bordereau round trip
func TestWriteAndReadBordereau(t *testing.T) {
	store := newTestStore(t)
	at := time.Date(2024, 3, 18, 17, 30, 5, 0, time.UTC)

	name, err := store.WriteBordereau(at, []byte("%PDF-bordereau"))
	require.NoError(t, err)
	assert.Equal(t, "bordereau_2024-03-18_17-30-05.pdf", name)

	content, err := store.ReadBordereau(name)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-bordereau"), content)
}

// TestReadBordereauRejectsTraversal tests path traversal rejection
func TestReadBordereauRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ReadBordereau("../labels/ORD-1.pdf")
	assert.Error(t, err)

	_, err = store.ReadBordereau("notes.txt")
	assert.Error(t, err)
}

// TestListBordereauxNewestFirst tests ordering and filtering of the listing
func TestListBordereauxNewestFirst(t *testing.T) {
	store := newTestStore(t)

	_, err := store.WriteBordereau(time.Date(2024, 3, 17, 10, 0, 0, 0, time.UTC), []byte("a"))
	require.NoError(t, err)
	_, err = store.WriteBordereau(time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC), []byte("b"))
	require.NoError(t, err)
	_, err = store.WriteBordereau(time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), []byte("c"))
	require.NoError(t, err)

	// A stray file without the manifest prefix is ignored.
	require.NoError(t, os.WriteFile(filepath.Join(store.bordereauDir, "readme.txt"), []byte("x"), 0o644))

	names, err := store.ListBordereaux()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"bordereau_2024-03-18_10-00-00.pdf",
		"bordereau_2024-03-17_10-00-00.pdf",
		"bordereau_2024-02-01_10-00-00.pdf",
	}, names)
}

// TestListBordereauxMissingDir tests that a missing directory lists as empty
func TestListBordereauxMissingDir(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "labels"), filepath.Join(t.TempDir(), "nope"))

	names, err := store.ListBordereaux()
	require.NoError(t, err)
	assert.Empty(t, names)
}

// TestAtomicWriteLeavesNoTempFiles tests that successful writes clean up
func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteLabel("ORD-1", "pdf", []byte("label")))

	entries, err := os.ReadDir(store.labelDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ORD-1.pdf", entries[0].Name())
}
