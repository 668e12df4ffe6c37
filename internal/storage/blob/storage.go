// Package blob provides text blob backends for the blob storage provider:
// in-memory, local directory, S3-compatible object storage, PostgreSQL and
// SQLite. Backends are addressed by key; a collection is stored as one item.
package blob

import (
	"context"
	"errors"
)

var (
	// ErrBlobNotFound is returned by ReadText when the key does not exist.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrUnsupportedConnectionString is returned by FromConnectionString for
	// unknown schemes or malformed strings.
	ErrUnsupportedConnectionString = errors.New("unsupported connection string")

	// ErrInvalidKey is returned for empty keys or keys escaping the root.
	ErrInvalidKey = errors.New("invalid blob key")
)

// Storage is a minimal text blob store. The identity stores only read and
// write whole collections; Delete and Exists complete the contract for
// callers managing items directly and every backend must honor them:
// deleting a missing key is not an error and Exists never returns
// ErrBlobNotFound.
type Storage interface {
	ReadText(ctx context.Context, key string) (string, error)
	WriteText(ctx context.Context, key, text string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// BatchWriter is implemented by backends able to write several items
// atomically.
type BatchWriter interface {
	WriteTexts(ctx context.Context, items map[string]string) error
}

// WriteAll writes every item, atomically when s implements BatchWriter and
// one after another otherwise.
func WriteAll(ctx context.Context, s Storage, items map[string]string) error {
	if bw, ok := s.(BatchWriter); ok {
		return bw.WriteTexts(ctx, items)
	}
	for key, text := range items {
		if err := s.WriteText(ctx, key, text); err != nil {
			return err
		}
	}
	return nil
}
