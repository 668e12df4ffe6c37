package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Serialize encodes items as a JSON array. A nil slice is written as [].
func Serialize[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return data, nil
}

// Deserialize decodes a JSON array. Blank input and a JSON null yield an
// empty collection.
func Deserialize[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("deserialize: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
