package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DirStore saves photos to disk under a base directory. Used for local
// development and tests; the server mounts the directory under /photos/.
type DirStore struct {
	basePath string
}

// NewDirStore creates the base directory if missing.
func NewDirStore(basePath string) (*DirStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("photo storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}
	return &DirStore{basePath: basePath}, nil
}

// BasePath returns the directory photos are written to.
func (d *DirStore) BasePath() string { return d.basePath }

// Put writes a photo file named by its key.
func (d *DirStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	target := filepath.Join(d.basePath, safeKey(key))
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create photo file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("write photo file: %w", err)
	}
	return nil
}

// URL returns the server-relative path the photo is exposed under.
func (d *DirStore) URL(_ context.Context, key string) (string, error) {
	return "/photos/" + safeKey(key), nil
}

// Delete removes a photo file. Missing files are not an error.
func (d *DirStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(d.basePath, safeKey(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func safeKey(key string) string {
	key = filepath.Base(key)
	key = strings.ReplaceAll(key, string(os.PathSeparator), "_")
	key = strings.TrimSpace(key)
	if key == "" {
		return "photo"
	}
	return key
}
