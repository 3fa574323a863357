package modelstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/symptom-intake-server/internal/domain"
)

// FileStore keeps model blobs as files under a data directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating model directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path maps a blob key to a file inside the data directory. Separators are
// flattened so a key can never escape the directory.
func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".blob")
}

// Store writes the blob through a temp file and rename so a crash mid-write
// never leaves a truncated blob behind.
func (s *FileStore) Store(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".model-*")
	if err != nil {
		return fmt.Errorf("creating temp blob: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing blob: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publishing blob: %w", err)
	}
	return nil
}

// Retrieve reads a blob by key; a missing file maps to ErrBlobNotFound.
func (s *FileStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return data, nil
}
