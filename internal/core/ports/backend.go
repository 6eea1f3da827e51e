package ports

import (
	"context"
	"time"

	"github.com/polycache/polycache/internal/core/domain/cache"
)

// Backend is the capability contract every storage engine satisfies. The
// coordinator owns a binding exclusively and serializes all calls on it, so
// implementations need no locking of their own.
type Backend interface {
	// Get reads the entry for key. Expiry is engine-local: a stale entry
	// that is still physically present reports cache.StatusFoundExpired,
	// not StatusNotFound. Get never removes entries.
	Get(ctx context.Context, key string) (cache.Lookup, error)
	// Put stores value under key, overwriting any previous entry. ttl <= 0
	// stores a never-expiring entry; otherwise the engine computes the
	// absolute expiry at call time.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes all entries in this binding's registry only.
	Clear(ctx context.Context) error
	// Cleanup deletes every entry whose expiry is non-sentinel and already
	// past. Entries with the sentinel or a future expiry are untouched.
	Cleanup(ctx context.Context) error
	// Close releases engine resources (file handles, connections).
	Close() error
}

// Opener constructs and initializes a Backend for one registry. Options are
// engine-specific; unknown keys are ignored. Which openers exist is a
// configuration-time decision made by the composition root, never a runtime
// probe.
type Opener func(ctx context.Context, registry string, options map[string]string) (Backend, error)
