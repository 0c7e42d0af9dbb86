package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// localStore implements BlobStore on the local filesystem. Each Put writes to
// a temporary file in the same directory and renames it into place, so a
// crash or client disconnect mid-upload never leaves a partial blob under the
// final name. Unique names make concurrent Puts independent; no locking is
// needed beyond the rename.
type localStore struct {
	dir string
}

// NewLocal creates a filesystem-backed blob store rooted at dir, creating the
// directory if it does not exist.
func NewLocal(dir string) (BlobStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &localStore{dir: dir}, nil
}

func (s *localStore) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("short write: got %d bytes, want %d", n, size)
	}
	if err == nil {
		// Make the content durable before it becomes visible under name.
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write blob %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit blob %s: %w", name, err)
	}
	return nil
}

func (s *localStore) Get(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, 0, fmt.Errorf("open blob %s: %w", name, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat blob %s: %w", name, err)
	}
	return f, st.Size(), nil
}

func (s *localStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("delete blob %s: %w", name, err)
	}
	return nil
}
