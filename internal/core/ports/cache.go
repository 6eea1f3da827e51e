package ports

import (
	"context"
	"time"
)

// Cache is the coordinator-facing contract over all registries. Reads use
// the canonical triple (value, hit, err): a hit carries the live value, a
// miss carries the caller-supplied default, and err is reserved for registry
// lookup failures and backend malfunctions. An expired entry is a miss,
// never an error.
type Cache interface {
	// Get returns the value for key in registry. hit=false yields def.
	Get(ctx context.Context, registry, key string, def []byte) ([]byte, bool, error)
	// Put stores value for key in registry and echoes the stored value on
	// success so callers can chain. ttl 0 applies the coordinator default;
	// a negative ttl stores a never-expiring entry.
	Put(ctx context.Context, registry, key string, value []byte, ttl time.Duration) ([]byte, bool, error)
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, registry, key string) error
	// Clear empties every bound registry. All registries are attempted even
	// if one fails; the first failure is returned.
	Clear(ctx context.Context) error
	// Sweep runs one best-effort cleanup pass across all registries.
	Sweep(ctx context.Context)
	// Registries lists the registry names bound at startup, in order.
	Registries() []string
}
