package session

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps sessions in an in-process map with TTL expiry. It is
// the fallback when Valkey is not configured — fine for the single-process
// deployment this application targets, but sessions do not survive restarts.
type MemoryBackend struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	payload []byte
	expires time.Time
}

// NewMemoryBackend creates an empty in-process session backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]memoryEntry)}
}

// Set stores a payload under id, replacing any previous value.
func (m *MemoryBackend) Set(_ context.Context, id string, payload []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeLocked()
	m.sessions[id] = memoryEntry{
		payload: payload,
		expires: time.Now().Add(ttl),
	}
	return nil
}

// Get returns the stored payload, or (nil, nil) when absent or expired.
func (m *MemoryBackend) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expires) {
		delete(m.sessions, id)
		return nil, nil
	}
	return entry.payload, nil
}

// Delete removes the session. Unknown ids are a no-op.
func (m *MemoryBackend) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// purgeLocked drops expired sessions. Called opportunistically on writes
// so the map cannot grow without bound. Caller holds the mutex.
func (m *MemoryBackend) purgeLocked() {
	now := time.Now()
	for id, entry := range m.sessions {
		if now.After(entry.expires) {
			delete(m.sessions, id)
		}
	}
}
