package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded files under a single root directory. Every file
// gets its own random subdirectory so repeated uploads of the same name
// never collide.
type Store struct {
	root string
}

// NewStore creates the root directory if needed.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute upload root.
func (s *Store) Root() string {
	return s.root
}

// Save writes content to a fresh path under the root and returns the path
// and the byte count written.
func (s *Store) Save(filename string, content io.Reader) (string, int64, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		return "", 0, fmt.Errorf("invalid filename %q", filename)
	}

	dir := filepath.Join(s.root, uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	size, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, size, nil
}

// Remove deletes a stored file and its containing directory. Paths outside
// the root are refused.
func (s *Store) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("path %s is outside the upload root", path)
	}

	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove %s: %w", abs, err)
	}
	// Drop the per-upload directory if it is now empty.
	if dir := filepath.Dir(abs); dir != s.root {
		_ = os.Remove(dir)
	}
	return nil
}

// sanitizeFilename strips any path components and refuses names that
// would escape the destination directory.
func sanitizeFilename(filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return ""
	}
	return name
}
