package keystore

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is how often writes drop expired entries.
const sweepInterval = time.Minute

type bucket struct {
	count int64
	end   time.Time
}

// MemoryStore keeps denylist and counters in process memory. It suits a
// single instance; use RedisStore when running several.
type MemoryStore struct {
	mu        sync.Mutex
	now       func() time.Time
	revoked   map[string]time.Time
	buckets   map[string]*bucket
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:     time.Now,
		revoked: make(map[string]time.Time),
		buckets: make(map[string]*bucket),
	}
}

func (m *MemoryStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)
	m.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (m *MemoryStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(until) {
		delete(m.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)
	b, ok := m.buckets[key]
	if !ok || !now.Before(b.end) {
		b = &bucket{end: now.Add(window)}
		m.buckets[key] = b
	}

	b.count++
	return b.count, nil
}

// sweep drops expired revocations and windows. m.mu must be held.
func (m *MemoryStore) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now

	for id, until := range m.revoked {
		if !now.Before(until) {
			delete(m.revoked, id)
		}
	}
	for key, b := range m.buckets {
		if !now.Before(b.end) {
			delete(m.buckets, key)
		}
	}
}
