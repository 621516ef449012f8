package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"agroMarket/pkg/utils"

	"github.com/google/uuid"
)

// maxImageBytes caps a single product picture.
const maxImageBytes = 5 << 20

var ErrImageTooLarge = errors.New("image is larger than 5MB")

// LocalImageStore writes product pictures under one uploads directory.
type LocalImageStore struct {
	dir string
}

func NewLocalImageStore(dir string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &LocalImageStore{dir: dir}, nil
}

func (s *LocalImageStore) Dir() string {
	return s.dir
}

// Save stores r under "<uuid>_<sanitized original name>" and returns that name.
// The uuid prefix keeps two uploads of "photo.jpg" from overwriting each other.
func (s *LocalImageStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	clean := utils.SanitizeFilename(originalName)
	if clean == "" {
		clean = "image"
	}
	name := uuid.NewString() + "_" + clean

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, maxImageBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if n > maxImageBytes {
		return "", ErrImageTooLarge
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return name, nil
}

// Remove deletes a stored picture, missing files are ignored.
func (s *LocalImageStore) Remove(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image: %w", err)
	}

	return nil
}
