package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored object without its content.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// Driver defines how we interact with the binary storage
type Driver interface {
	// Save writes the content to the storage under the given key
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get returns a ReadCloser to stream the file back and its content type
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the file
	Delete(ctx context.Context, key string) error

	// List returns the objects stored under the given key prefix
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Rename moves an object to a new key
	Rename(ctx context.Context, oldKey, newKey string) error

	// GenerateURL returns a public-facing URL
	GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
