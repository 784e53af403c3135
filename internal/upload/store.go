// Package upload stores uploaded video files on local disk.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadSize is the largest accepted video file (500 MB). Enforced at
// the HTTP layer with http.MaxBytesReader; kept here so the limit lives
// next to the storage code.
const MaxUploadSize = 500 << 20

// Store writes uploaded files into a single directory with random names.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a Store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: creating directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory files are stored in, for static serving.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the file to disk under a random name that keeps the original
// extension. Returns the stored filename (not the full path); the public
// URL is /uploads/<filename>.
func (s *Store) Save(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("upload: creating file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("upload: writing file: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. Missing files are not an error; the row is
// the source of truth and the file may already be gone.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("upload: removing file %s: %w", name, err)
	}
	return nil
}
