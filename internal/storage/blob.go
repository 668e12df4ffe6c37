package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/identitystore/internal/logging"
	"github.com/dmitrijs2005/identitystore/internal/storage/blob"
)

// BlobProvider keeps a collection as one text item in a blob.Storage.
type BlobProvider[T any] struct {
	storage blob.Storage
	key     string
	log     logging.Logger
}

var _ Provider[struct{}] = (*BlobProvider[struct{}])(nil)

func NewBlobProvider[T any](storage blob.Storage, key string, log logging.Logger) *BlobProvider[T] {
	if log == nil {
		log = logging.Nop()
	}
	return &BlobProvider[T]{
		storage: storage,
		key:     key,
		log:     log.With("provider", "blob", "key", key),
	}
}

// Key returns the item id the collection is stored under.
func (p *BlobProvider[T]) Key() string {
	return p.key
}

func (p *BlobProvider[T]) Load(ctx context.Context) ([]T, error) {
	text, err := p.storage.ReadText(ctx, p.key)
	if err != nil {
		if errors.Is(err, blob.ErrBlobNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read blob %s: %w", p.key, err)
	}

	items, err := Deserialize[T]([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("blob %s: %w", p.key, err)
	}
	return items, nil
}

func (p *BlobProvider[T]) Save(ctx context.Context, items []T) bool {
	data, err := Serialize(items)
	if err != nil {
		p.log.Warn(ctx, "save failed", "error", err)
		return false
	}

	if err := p.storage.WriteText(ctx, p.key, string(data)); err != nil {
		p.log.Warn(ctx, "save failed", "error", err)
		return false
	}

	p.log.Debug(ctx, "collection saved", "count", len(items))
	return true
}
