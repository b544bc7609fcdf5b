package cache

import (
	"context"
	"sync"
	"sync/atomic"
)

const DefaultMemoryEntries = 10000

// Memory is an in-process cache. It drops everything once MaxEntries is
// reached.
type Memory struct {
	items      sync.Map
	size       atomic.Int64
	maxEntries int64
}

func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	return &Memory{maxEntries: int64(maxEntries)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.items.Load(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	if m.size.Load() >= m.maxEntries {
		m.items.Clear()
		m.size.Store(0)
	}
	if _, loaded := m.items.Swap(key, append([]byte(nil), value...)); !loaded {
		m.size.Add(1)
	}
	return nil
}
