package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/rcesaret/new-caledonia-commune-locator/internal/errors"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/logger"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/metrics"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/session"
)

// MemoryStore keeps sessions in process memory. Sessions idle past the TTL
// are removed by a background sweep; there is no persistence across restarts.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]*session.Session
	ttl       time.Duration
	maxPoints int
}

// NewMemoryStore creates an empty store. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration, maxPoints int) *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*session.Session),
		ttl:       ttl,
		maxPoints: maxPoints,
	}
}

// Create registers a new session under a fresh UUID.
func (m *MemoryStore) Create(ctx context.Context) (*session.Session, error) {
	s := session.New(uuid.New().String(), m.maxPoints)

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SetSessionsActive(n)
	return s, nil
}

// Get returns the session and refreshes its TTL clock.
func (m *MemoryStore) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

// Delete removes the session.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return apperrors.ErrSessionNotFound
	}
	delete(m.sessions, id)
	metrics.SetSessionsActive(len(m.sessions))
	return nil
}

// Count returns the number of live sessions.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

// Health always succeeds for the in-memory store.
func (m *MemoryStore) Health(ctx context.Context) error {
	return nil
}

// Sweep removes sessions idle past the TTL and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := time.Now().UTC().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.SetSessionsActive(len(m.sessions))
	}
	return removed
}

// RunSweeper sweeps on the given interval until the context is canceled.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.Info("Expired idle sessions", "removed", n)
			}
		}
	}
}
