package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// DiskStore writes images into a local directory.
type DiskStore struct {
	dir string
	now func() time.Time
}

// NewDiskStore creates the directory if needed and returns a store writing into it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory images are written to.
func (s *DiskStore) Dir() string { return s.dir }

// Save validates the filename, copies src to disk and returns the public path
// (uploads/<millis>-<name>).
func (s *DiskStore) Save(ctx context.Context, filename string, src io.ReadSeeker) (string, error) {
	if err := ValidateImageName(filename); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := objectName(filename, s.now())
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	return publicPath(name), nil
}
