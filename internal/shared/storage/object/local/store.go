package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tire-backend/internal/shared/storage/object"
)

// Store keeps photos on the local filesystem.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes an image under the owner's directory.
func (s *Store) Save(ctx context.Context, owner, fileName string, r io.Reader) (object.Object, error) {
	key, err := object.NewKey(owner, fileName)
	if err != nil {
		return object.Object{}, fmt.Errorf("storage key: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}
	contentType, body, err := object.SniffImage(r)
	if err != nil {
		return object.Object{}, err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.Object{}, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return object.Object{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, body)
	if err != nil {
		return object.Object{}, fmt.Errorf("write body: %w", err)
	}
	return object.Object{Key: key, Size: size, ContentType: contentType}, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := object.CleanKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.baseDir, filepath.FromSlash(clean)))
}

var _ object.Store = (*Store)(nil)
