package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalUploader writes uploads to a directory on disk. Dev fallback
// when no bucket is configured.
type LocalUploader struct {
	dir string
}

func NewLocalUploader(dir string) *LocalUploader {
	return &LocalUploader{dir: dir}
}

func (u *LocalUploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	dest := filepath.Join(u.dir, filepath.FromSlash(key))

	err := os.MkdirAll(filepath.Dir(dest), 0o755)

	if err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(dest)

	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	defer f.Close()

	_, err = io.Copy(f, body)

	if err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return "file://" + dest, nil
}

func (u *LocalUploader) PresignGet(ctx context.Context, key string) (string, error) {
	return "file://" + filepath.Join(u.dir, filepath.FromSlash(key)), nil
}
