package storage

import (
	"context"
	"errors"
	"sync"
)

// ChangeKind describes a collection mutation.
type ChangeKind int

const (
	Added ChangeKind = iota + 1
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Change is delivered to subscribers after a mutation. Items is a snapshot
// of the whole collection after the change.
type Change[T any] struct {
	Kind  ChangeKind
	Item  T
	Items []T
}

// Handler reacts to a collection change.
type Handler[T any] func(ctx context.Context, change Change[T]) error

// Collection is an in-memory copy of a provider's collection that notifies
// subscribers on every mutation. The first access loads from the provider;
// Invalidate forces a reload on the next access.
type Collection[T any] struct {
	mu       sync.Mutex
	provider Provider[T]
	items    []T
	loaded   bool
	handlers []Handler[T]
}

func NewCollection[T any](provider Provider[T]) *Collection[T] {
	return &Collection[T]{provider: provider}
}

// Subscribe registers h for every subsequent change.
func (c *Collection[T]) Subscribe(h Handler[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// Invalidate drops the cached items.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.loaded = false
}

// Items returns a copy of the current items.
func (c *Collection[T]) Items(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return c.snapshot(), nil
}

func (c *Collection[T]) Add(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}
	c.items = append(c.items, item)
	return c.notify(ctx, Added, item)
}

// Remove removes the first item matching match and reports whether one was
// found.
func (c *Collection[T]) Remove(ctx context.Context, match func(T) bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return false, err
	}
	for i, it := range c.items {
		if match(it) {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true, c.notify(ctx, Removed, it)
		}
	}
	return false, nil
}

func (c *Collection[T]) ensureLoaded(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.loaded {
		return nil
	}
	items, err := c.provider.Load(ctx)
	if err != nil {
		return err
	}
	c.items = items
	c.loaded = true
	return nil
}

func (c *Collection[T]) snapshot() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// notify runs every handler. When any of them fails the cached items are
// dropped so the next access reloads what was actually persisted.
func (c *Collection[T]) notify(ctx context.Context, kind ChangeKind, item T) error {
	change := Change[T]{Kind: kind, Item: item, Items: c.snapshot()}

	var errs []error
	for _, h := range c.handlers {
		if err := h(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		c.items = nil
		c.loaded = false
	}
	return errors.Join(errs...)
}
