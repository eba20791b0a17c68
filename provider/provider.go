// Package provider defines the storage abstraction pipecache talks to.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no
// prepended/appended metadata, no re-encoding, no mutation). If a store
// performs internal transforms (e.g., compression), they MUST be fully
// reversed so that the bytes returned by Get are identical to the bytes
// provided to Set.
//
// pipecache stores group records under the caller-supplied group key and
// under that key with a "SlidingExpiration" suffix. External code MUST NOT
// write foreign values under keys it also uses as group keys; foreign bytes
// under a group key are treated as corruption by strict record validation.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with sliding TTLs. Must be safe for
// concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. May ignore cost if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Remove deletes a key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
