// Package cache provides keyed slot stores backing the listing snapshot and
// the per-article converted text.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"PaperCast/internal/domain"
	"PaperCast/internal/ports"
)

// FileStore keeps one file per key inside a directory. Keys are normalized
// for path safety before use; values are written as-is.
type FileStore struct {
	dir string
	ext string
}

var _ ports.Store = (*FileStore)(nil)

// NewFileStore ensures the backing directory exists. The extension is
// appended to every slot file name and stripped again by Keys.
func NewFileStore(dir, ext string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, ext: ext}, nil
}

// Get loads the slot contents; the second result reports whether it exists.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache slot %s: %w", key, err)
	}
	return data, true, nil
}

// Put overwrites the slot with value.
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	if err := os.WriteFile(s.path(key), value, 0o644); err != nil {
		return fmt.Errorf("write cache slot %s: %w", key, err)
	}
	return nil
}

// Exists checks slot presence without reading the contents.
func (s *FileStore) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat cache slot %s: %w", key, err)
	}
	return true, nil
}

// Keys lists every stored key in this directory.
func (s *FileStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list cache directory %s: %w", s.dir, err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if s.ext != "" {
			if !strings.HasSuffix(name, s.ext) {
				continue
			}
			name = strings.TrimSuffix(name, s.ext)
		}
		keys = append(keys, name)
	}
	return keys, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, domain.SafeID(key)+s.ext)
}
