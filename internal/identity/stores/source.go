package stores

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/storage"
)

// source is the collection a store reads and rewrites: either the provider
// itself or a cached storage.Collection in front of it.
type source[T any] interface {
	all(ctx context.Context) ([]T, error)
	add(ctx context.Context, item T) error
	// remove drops the first match.
	remove(ctx context.Context, match func(T) bool) error
	invalidate()
}

type directSource[T any] struct {
	provider storage.Provider[T]
}

func (d directSource[T]) all(ctx context.Context) ([]T, error) {
	return d.provider.Load(ctx)
}

func (d directSource[T]) add(ctx context.Context, item T) error {
	items, err := d.provider.Load(ctx)
	if err != nil {
		return err
	}
	return d.save(ctx, append(items, item))
}

func (d directSource[T]) remove(ctx context.Context, match func(T) bool) error {
	items, err := d.provider.Load(ctx)
	if err != nil {
		return err
	}
	for i, it := range items {
		if match(it) {
			items = append(items[:i], items[i+1:]...)
			break
		}
	}
	return d.save(ctx, items)
}

func (d directSource[T]) invalidate() {}

func (d directSource[T]) save(ctx context.Context, items []T) error {
	if !d.provider.Save(ctx, items) {
		return common.ErrPersistence
	}
	return nil
}

type cachedSource[T any] struct {
	coll *storage.Collection[T]
}

func newCachedSource[T any](provider storage.Provider[T]) cachedSource[T] {
	coll := storage.NewCollection(provider)
	coll.Subscribe(func(ctx context.Context, change storage.Change[T]) error {
		if !provider.Save(ctx, change.Items) {
			return fmt.Errorf("%w: %s", common.ErrPersistence, change.Kind)
		}
		return nil
	})
	return cachedSource[T]{coll: coll}
}

func (c cachedSource[T]) all(ctx context.Context) ([]T, error) {
	return c.coll.Items(ctx)
}

func (c cachedSource[T]) add(ctx context.Context, item T) error {
	return c.coll.Add(ctx, item)
}

func (c cachedSource[T]) remove(ctx context.Context, match func(T) bool) error {
	_, err := c.coll.Remove(ctx, match)
	return err
}

func (c cachedSource[T]) invalidate() {
	c.coll.Invalidate()
}

func newSource[T any](provider storage.Provider[T], o options) source[T] {
	if o.cache {
		return newCachedSource(provider)
	}
	return directSource[T]{provider: provider}
}
