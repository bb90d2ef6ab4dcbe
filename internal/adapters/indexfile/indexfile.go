// Package indexfile persists the assignment index as a single JSON file
// on local disk.
package indexfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

type Blob struct {
	path string
}

func New(path string) *Blob {
	if path == "" {
		path = "./autoserve_index.json"
	}
	return &Blob{path: path}
}

func (b *Blob) Load(_ context.Context) ([]byte, error) {
	return os.ReadFile(b.path)
}

// Store writes to a sibling temp file and renames it over the target, so
// readers never observe a half-written index.
func (b *Blob) Store(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (b *Blob) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(b.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
