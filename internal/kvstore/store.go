// Package kvstore provides the expiring key-value storage behind the
// anti-forgery token registry and the rate-limit counters. Single-instance
// deployments run on the in-memory store; multi-instance deployments point
// the same logic at Redis.
package kvstore

import (
	"context"
	"time"
)

// Store is a minimal get/set/delete contract with per-key TTL. A zero TTL
// means the entry never expires.
type Store interface {
	// Get returns the stored value and whether the key exists. Expired
	// entries are reported as absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any existing entry and
	// resetting its TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Sweeper is implemented by stores that need an external cleanup pass to
// bound memory growth. Redis expires keys itself; the memory store relies
// on the background sweeper.
type Sweeper interface {
	Sweep() int
}
