// Package storage persists whole collections of identity records.
//
// A Provider loads and saves an entire collection at once: callers read the
// full list, change it in memory and hand the full list back. Providers never
// fail a load because the backing item is missing; they return an empty
// collection instead. Save reports success as a boolean and logs the cause of
// a failure.
package storage

import "context"

// Provider loads and saves a collection of T.
type Provider[T any] interface {
	// Load returns the stored collection, or an empty one when nothing has
	// been stored yet.
	Load(ctx context.Context) ([]T, error)

	// Save replaces the stored collection with items.
	Save(ctx context.Context, items []T) bool
}
