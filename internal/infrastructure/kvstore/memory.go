package kvstore

import (
	"context"
	"sync"

	"rivalwatch/internal/ports"
)

// MemoryStore is the in-memory ByteStore used by tests and ephemeral serving
// runs. Bodies are copied on the way in and out so callers never alias the
// stored slice.
type MemoryStore struct {
	mu     sync.RWMutex
	groups map[string]map[string]ports.CacheEntry
}

var _ ports.ByteStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{groups: map[string]map[string]ports.CacheEntry{}}
}

// Get returns the entry stored under group/key, if any.
func (m *MemoryStore) Get(ctx context.Context, group, key string) (ports.CacheEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return ports.CacheEntry{}, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, ok := m.groups[group]
	if !ok {
		return ports.CacheEntry{}, false, nil
	}
	entry, ok := entries[key]
	if !ok {
		return ports.CacheEntry{}, false, nil
	}
	return copyEntry(entry), true, nil
}

// Put stores the entry under group/key, overwriting in place.
func (m *MemoryStore) Put(ctx context.Context, group, key string, entry ports.CacheEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.groups[group]
	if !ok {
		entries = map[string]ports.CacheEntry{}
		m.groups[group] = entries
	}
	entries[key] = copyEntry(entry)
	return nil
}

// DeleteGroup drops a whole resource-set group.
func (m *MemoryStore) DeleteGroup(ctx context.Context, group string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, group)
	return nil
}

// Groups lists the group names currently holding entries.
func (m *MemoryStore) Groups(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.groups))
	for name := range m.groups {
		names = append(names, name)
	}
	return names, nil
}

func copyEntry(entry ports.CacheEntry) ports.CacheEntry {
	body := make([]byte, len(entry.Body))
	copy(body, entry.Body)
	entry.Body = body
	return entry
}
