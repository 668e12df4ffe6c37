package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/identitystore/internal/filex"
	"github.com/dmitrijs2005/identitystore/internal/logging"
)

// FileProvider keeps a collection in a single local JSON file.
type FileProvider[T any] struct {
	path string
	log  logging.Logger
}

var _ Provider[struct{}] = (*FileProvider[struct{}])(nil)

func NewFileProvider[T any](path string, log logging.Logger) *FileProvider[T] {
	if log == nil {
		log = logging.Nop()
	}
	return &FileProvider[T]{path: path, log: log.With("provider", "file", "path", path)}
}

// Path returns the backing file.
func (p *FileProvider[T]) Path() string {
	return p.path
}

func (p *FileProvider[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", p.path, err)
	}

	items, err := Deserialize[T](data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.path, err)
	}
	return items, nil
}

func (p *FileProvider[T]) Save(ctx context.Context, items []T) bool {
	if err := ctx.Err(); err != nil {
		p.log.Warn(ctx, "save skipped", "error", err)
		return false
	}

	data, err := Serialize(items)
	if err != nil {
		p.log.Warn(ctx, "save failed", "error", err)
		return false
	}

	if err := filex.WriteFileAtomic(p.path, data, 0o600); err != nil {
		p.log.Warn(ctx, "save failed", "error", err)
		return false
	}

	p.log.Debug(ctx, "collection saved", "count", len(items))
	return true
}
