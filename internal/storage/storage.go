// Package storage abstracts where uploaded payloads live. Keys follow
// the <userID>/<filename> convention so a user's files share one prefix
package storage

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

type Backend interface {
	// Save writes a payload under key, creating the owner prefix lazily.
	// A partially written payload is removed on failure
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Open returns a reader over the payload. The caller must close it
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether the payload is physically present
	Exists(ctx context.Context, key string) (bool, error)

	// Remove deletes a payload. A missing payload is not an error
	Remove(ctx context.Context, key string) error

	// RemovePrefix deletes every payload under a key prefix
	RemovePrefix(ctx context.Context, prefix string) error
}

// New builds the backend selected by storage.type
func New() (Backend, error) {
	switch viper.GetString("storage.type") {
	case "s3":
		return NewS3()
	case "local":
		return NewLocal(viper.GetString("storage.root"), afero.NewOsFs())
	default:
		return nil, errors.New("invalid storage type provided")
	}
}
