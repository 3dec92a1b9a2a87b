package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// CustomsExtension is the extension of customs declaration artifacts. The
// customs form shares the label's base name so both are cleaned up together.
const CustomsExtension = "cn23"

const bordereauPrefix = "bordereau_"

// FileStore persists label and bordereau artifacts on the local filesystem.
// Labels live under LabelDir as <base>.<ext>; bordereaux under BordereauDir
// as bordereau_<timestamp>.pdf. Writes are atomic via temp file plus rename
// so a crashed write never leaves a half-written artifact behind.
type FileStore struct {
	labelDir     string
	bordereauDir string
}

// NewFileStore creates a FileStore rooted at the given directories.
func NewFileStore(labelDir, bordereauDir string) *FileStore {
	return &FileStore{labelDir: labelDir, bordereauDir: bordereauDir}
}

// EnsureDirs creates the storage directories if missing.
func (f *FileStore) EnsureDirs() error {
	for _, dir := range []string{f.labelDir, f.bordereauDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}
	return nil
}

// LabelPath returns the absolute path of a label artifact.
func (f *FileStore) LabelPath(base, ext string) string {
	return filepath.Join(f.labelDir, base+"."+ext)
}

// WriteLabel stores a label artifact under <base>.<ext>.
func (f *FileStore) WriteLabel(base, ext string, content []byte) error {
	return atomicWrite(f.LabelPath(base, ext), content)
}

// WriteCustomsForm stores a customs declaration next to its label.
func (f *FileStore) WriteCustomsForm(base string, content []byte) error {
	return atomicWrite(f.LabelPath(base, CustomsExtension), content)
}

// ReadLabel returns the artifact stored under <base>.<ext>.
func (f *FileStore) ReadLabel(base, ext string) ([]byte, error) {
	return os.ReadFile(f.LabelPath(base, ext))
}

// LabelExists reports whether an artifact exists under <base>.<ext>.
func (f *FileStore) LabelExists(base, ext string) bool {
	info, err := os.Stat(f.LabelPath(base, ext))
	return err == nil && !info.IsDir()
}

// RemoveByPrefix deletes every artifact whose file name starts with
// "<base>." so the label and any customs form go together. Missing files
// are not an error.
func (f *FileStore) RemoveByPrefix(base string) error {
	entries, err := os.ReadDir(f.labelDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to list label directory: %w", err)
	}

	prefix := base + "."
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(f.labelDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove artifact %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// BordereauName builds the canonical bordereau file name for a generation
// timestamp.
func BordereauName(at time.Time) string {
	return bordereauPrefix + at.Format("2006-01-02_15-04-05") + ".pdf"
}

// WriteBordereau stores a manifest artifact and returns its file name.
func (f *FileStore) WriteBordereau(at time.Time, content []byte) (string, error) {
	name := BordereauName(at)
	if err := atomicWrite(filepath.Join(f.bordereauDir, name), content); err != nil {
		return "", err
	}
	return name, nil
}

// ReadBordereau returns a stored manifest by file name. The name is
// validated against path traversal since it can arrive from an HTTP route.
func (f *FileStore) ReadBordereau(name string) ([]byte, error) {
	if name != filepath.Base(name) || !strings.HasPrefix(name, bordereauPrefix) {
		return nil, fmt.Errorf("invalid bordereau name %q", name)
	}
	return os.ReadFile(filepath.Join(f.bordereauDir, name))
}

// ListBordereaux returns the stored manifest file names, newest first.
func (f *FileStore) ListBordereaux() ([]string, error) {
	entries, err := os.ReadDir(f.bordereauDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list bordereau directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), bordereauPrefix) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to publish artifact %s: %w", path, err)
	}
	return nil
}
