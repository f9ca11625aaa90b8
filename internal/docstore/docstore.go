// Package docstore persists uploaded and generated documents under a single
// base directory and hands out paths relative to it. Relative paths are what
// gets stored in the database, so the base directory can move between
// environments without rewriting rows.
package docstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is a directory-backed document store.
type Store struct {
	baseDir string
}

// New creates the base directory if needed and returns a store rooted there.
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, errors.New("docstore: base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("docstore: create base dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Save writes r into the subdirectory, prefixing the sanitized suggested name
// with a random ID so concurrent uploads of the same filename never collide.
// The returned path is relative to the base directory.
func (s *Store) Save(subdir, suggestedName string, r io.Reader) (string, error) {
	name := sanitizeName(suggestedName)
	if name == "" {
		name = "document"
	}
	rel := filepath.Join(subdir, uuid.NewString()[:8]+"_"+name)

	abs := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("docstore: create dir: %w", err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("docstore: create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(abs)
		return "", fmt.Errorf("docstore: write file: %w", err)
	}
	return rel, nil
}

// SaveBytes stores an in-memory document, typically a generated PDF.
func (s *Store) SaveBytes(subdir, suggestedName string, data []byte) (string, error) {
	return s.Save(subdir, suggestedName, strings.NewReader(string(data)))
}

// Open opens a previously stored document by its relative path. Paths that
// escape the base directory are rejected.
func (s *Store) Open(rel string) (io.ReadCloser, error) {
	clean := filepath.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return nil, errors.New("docstore: invalid path")
	}
	f, err := os.Open(filepath.Join(s.baseDir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("docstore: %s: %w", rel, os.ErrNotExist)
		}
		return nil, err
	}
	return f, nil
}

// Remove deletes a stored document. Missing files are not an error.
func (s *Store) Remove(rel string) error {
	clean := filepath.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return errors.New("docstore: invalid path")
	}
	err := os.Remove(filepath.Join(s.baseDir, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// sanitizeName strips directory components and characters unsafe in filenames.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
