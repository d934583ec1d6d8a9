package keystore

import (
	"context"
	"time"
)

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Counter counts hits per key in fixed windows.
type Counter interface {
	// Incr adds one hit to key and returns the count in the current window.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Store is a backend serving both.
type Store interface {
	Denylist
	Counter
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

const (
	revokedPrefix = "kanban:revoked:"
	counterPrefix = "kanban:hits:"
)
