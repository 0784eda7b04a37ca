package session

import (
	"context"
	"sync"
	"time"

	"github.com/ppetrovna/povarenok/internal/metrics"
)

type memoryEntry struct {
	selection *Selection
	lastSeen  time.Time
}

// MemoryStore is the in-process Store. Sessions idle longer than the TTL
// are dropped by Sweep, which the session janitor calls periodically.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]*memoryEntry
	ttl     time.Duration
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]*memoryEntry),
		ttl:     ttl,
	}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (*Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[chatID]
	if !ok {
		return &Selection{}, nil
	}
	entry.lastSeen = time.Now()
	return entry.selection.clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, chatID int64, fn func(*Selection)) (*Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[chatID]
	if !ok {
		entry = &memoryEntry{selection: &Selection{}}
		m.entries[chatID] = entry
		metrics.SessionsActive.Set(float64(len(m.entries)))
	}
	entry.lastSeen = time.Now()
	fn(entry.selection)
	return entry.selection.clone(), nil
}

func (m *MemoryStore) Clear(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[chatID]; ok {
		delete(m.entries, chatID)
		metrics.SessionsActive.Set(float64(len(m.entries)))
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Sweep drops sessions idle longer than the TTL and returns how many were
// evicted.
func (m *MemoryStore) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for chatID, entry := range m.entries {
		if now.Sub(entry.lastSeen) > m.ttl {
			delete(m.entries, chatID)
			evicted++
		}
	}
	if evicted > 0 {
		metrics.SessionsActive.Set(float64(len(m.entries)))
	}
	return evicted
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

var _ Store = (*MemoryStore)(nil)
