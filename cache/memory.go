package cache

import (
	"context"
	"time"

	"github.com/helloworldpark/tickle-stock-info/commons"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// Memory is an in-process Cache.
// Values are stored encoded, so callers never share memory with the cache.
type Memory struct {
	entries *commons.ConcurrentMap[string, memoryEntry]
	now     func() time.Time
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries: commons.NewConcurrentMap[string, memoryEntry](),
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	entry, ok := m.entries.GetValue(key)
	if !ok {
		return false, nil
	}
	if !m.now().Before(entry.expires) {
		m.entries.DeleteValue(key)
		return false, nil
	}
	if err := decode(entry.data, v); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	m.entries.SetValue(key, memoryEntry{data: data, expires: m.now().Add(ttl)})
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.entries.DeleteValue(key)
	return nil
}
