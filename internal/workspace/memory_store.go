package workspace

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultMaxSize bounds an in-memory store when no size is configured.
const DefaultMaxSize = 10000

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// memoryStore keeps encoded snapshots so callers never share a State.
type memoryStore struct {
	entries map[string]memoryEntry

	mu      sync.RWMutex
	maxSize int
	closed  bool
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store holding at most maxSize states.
// When full, expired states are dropped first and then the ones closest to
// expiry.
func NewMemoryStore(maxSize int) Store {
	return newMemoryStore(maxSize, time.Now)
}

func newMemoryStore(maxSize int, now func() time.Time) *memoryStore {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &memoryStore{
		entries: make(map[string]memoryEntry, min(maxSize, 1024)),
		maxSize: maxSize,
		now:     now,
	}
}

func (m *memoryStore) Save(ctx context.Context, state *State, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := marshalState(state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	now := m.now()
	if _, exists := m.entries[state.ID]; !exists && len(m.entries) >= m.maxSize {
		m.cleanupExpiredUnsafe(now)

		if len(m.entries) >= m.maxSize {
			m.evictSoonestUnsafe(max(1, m.maxSize/10))
		}
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	m.entries[state.ID] = entry
	return nil
}

func (m *memoryStore) Load(ctx context.Context, id string) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrStoreClosed
	}
	entry, ok := m.entries[id]
	m.mu.RUnlock()

	// Expired entries stay until Cleanup; reads never take the write lock.
	if !ok || entry.expired(m.now()) {
		return nil, ErrNotFound
	}
	return unmarshalState(entry.data)
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memoryStore) Cleanup(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return m.cleanupExpiredUnsafe(m.now()), nil
}

func (m *memoryStore) Size(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.entries), nil
}

func (m *memoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.entries = nil
	return nil
}

// cleanupExpiredUnsafe must be called with the write lock held.
func (m *memoryStore) cleanupExpiredUnsafe(now time.Time) int {
	cleaned := 0
	for id, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, id)
			cleaned++
		}
	}
	return cleaned
}

// evictSoonestUnsafe drops the count entries closest to expiry. Entries
// without expiry go last. Must be called with the write lock held.
func (m *memoryStore) evictSoonestUnsafe(count int) {
	type candidate struct {
		id        string
		expiresAt time.Time
	}

	candidates := make([]candidate, 0, len(m.entries))
	for id, entry := range m.entries {
		candidates = append(candidates, candidate{id, entry.expiresAt})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i].expiresAt, candidates[j].expiresAt
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})

	for i := 0; i < len(candidates) && i < count; i++ {
		delete(m.entries, candidates[i].id)
	}
}
