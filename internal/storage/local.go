package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Local keeps payloads on disk under a single upload root, one
// subdirectory per owner
type Local struct {
	fs   afero.Fs
	root string
}

func NewLocal(root string, fs afero.Fs) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("no upload root provided")
	}

	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root, %w", err)
	}

	return &Local{fs: fs, root: root}, nil
}

func (l *Local) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *Local) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	p := l.path(key)

	if err := l.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create owner directory, %w", err)
	}

	f, err := l.fs.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create payload file, %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		l.fs.Remove(p)
		return fmt.Errorf("failed to write payload, %w", err)
	}

	return f.Close()
}

func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return l.fs.Open(l.path(key))
}

func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	return afero.Exists(l.fs, l.path(key))
}

func (l *Local) Remove(_ context.Context, key string) error {
	err := l.fs.Remove(l.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

func (l *Local) RemovePrefix(_ context.Context, prefix string) error {
	return l.fs.RemoveAll(l.path(prefix))
}
