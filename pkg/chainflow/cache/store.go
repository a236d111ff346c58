// Package cache provides keyed result caching for chain runs.
//
// A chain run can short-circuit when an identical (chain, query) pair
// completed within its TTL. The cache is a pure optimization, never a source
// of truth: losing it only costs recomputation. Stores hold serialized final
// chain results keyed by hex(SHA-256(chain + ":" + query)).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// Store caches final chain results.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the cached value for (chain, query) and whether it was a
	// hit. An entry past its TTL is deleted on read and reported as a miss,
	// never returned stale.
	Get(ctx context.Context, chain, query string) ([]byte, bool, error)

	// Put stores value for (chain, query), overwriting any existing entry.
	// A ttl of zero or less means the entry never expires.
	Put(ctx context.Context, chain, query string, value []byte, ttl time.Duration) error

	// Close releases any resources (connections, files).
	Close() error
}

// ErrStoreClosed indicates the store has been closed.
var ErrStoreClosed = errors.New("cache store closed")

// Key derives the cache key for a (chain, query) pair.
//
// The query is used exactly as given - case-sensitive, whitespace-sensitive,
// no normalization beyond what the caller already applied.
func Key(chain, query string) string {
	sum := sha256.Sum256([]byte(chain + ":" + query))
	return hex.EncodeToString(sum[:])
}
