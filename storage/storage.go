package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned, wrapped, by Download for a missing key.
var ErrNotFound = errors.New("storage: object not found")

// Object describes one archived upload.
type Object struct {
	Path         string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// Storage is the archive backend. Keys are slash-separated.
type Storage interface {
	Upload(ctx context.Context, key string, r io.Reader) error
	// Download opens the object at key. The caller closes it.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is a no-op for a missing key.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// List returns the objects under prefix.
	List(ctx context.Context, prefix string) ([]Object, error)
}
