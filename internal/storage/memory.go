package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryTable keeps items in process memory. It backs tests and local runs.
type MemoryTable struct {
	name  string
	mu    sync.RWMutex
	items map[string]document
}

// NewMemoryTable creates an empty in-memory table.
func NewMemoryTable(name string) *MemoryTable {
	return &MemoryTable{name: name, items: make(map[string]document)}
}

func (t *MemoryTable) Put(ctx context.Context, item any) error {
	doc, err := encode(item)
	if err != nil {
		return storeErr("put", t.name, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[doc.id] = doc
	return nil
}

func (t *MemoryTable) Get(ctx context.Context, id string, out any) (bool, error) {
	t.mu.RLock()
	doc, ok := t.items[id]
	t.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, storeErr("get", t.name, json.Unmarshal(doc.data, out))
}

func (t *MemoryTable) Query(ctx context.Context, index Index, value string, out any) error {
	t.mu.RLock()
	var matches []document
	for _, doc := range t.items {
		if v, ok := doc.attr(index.Attribute); ok && v == value {
			matches = append(matches, doc)
		}
	}
	t.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].id < matches[j].id })
	blobs := make([][]byte, len(matches))
	for i, doc := range matches {
		blobs[i] = doc.data
	}
	return storeErr("query", t.name, decodeList(blobs, out))
}

func (t *MemoryTable) Ping(ctx context.Context) error { return nil }

func (t *MemoryTable) Close() error { return nil }
