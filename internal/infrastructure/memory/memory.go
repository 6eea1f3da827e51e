package memory

import (
	"context"
	"time"

	"github.com/polycache/polycache/internal/core/domain/cache"
	"github.com/polycache/polycache/internal/core/ports"
)

// Backend is the in-process table backend and the fallback for registries
// whose configured backend fails to open. The coordinator guarantees
// exclusive, sequential access to a binding, so no locking is needed here.
type Backend struct {
	registry string
	entries  map[string]entry
}

type entry struct {
	value     []byte
	expiresAt int64 // unix ms; cache.NeverExpires when the entry has no TTL
}

// New creates an empty in-memory backend for registry.
func New(registry string) *Backend {
	return &Backend{
		registry: registry,
		entries:  make(map[string]entry),
	}
}

// Opener adapts New to the backend factory signature. Options are unused.
func Opener(_ context.Context, registry string, _ map[string]string) (ports.Backend, error) {
	return New(registry), nil
}

func (b *Backend) Get(_ context.Context, key string) (cache.Lookup, error) {
	e, ok := b.entries[key]
	if !ok {
		return cache.Lookup{Status: cache.StatusNotFound}, nil
	}
	if cache.Expired(e.expiresAt, time.Now()) {
		return cache.Lookup{Status: cache.StatusFoundExpired, Value: e.value}, nil
	}
	return cache.Lookup{Status: cache.StatusFound, Value: e.value}, nil
}

func (b *Backend) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.entries[key] = entry{
		value:     value,
		expiresAt: cache.ExpiresAt(time.Now(), ttl),
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	delete(b.entries, key)
	return nil
}

func (b *Backend) Clear(_ context.Context) error {
	b.entries = make(map[string]entry)
	return nil
}

func (b *Backend) Cleanup(_ context.Context) error {
	now := time.Now()
	for key, e := range b.entries {
		if cache.Expired(e.expiresAt, now) {
			delete(b.entries, key)
		}
	}
	return nil
}

func (b *Backend) Close() error { return nil }

// Len reports the number of physically present entries, expired or not.
func (b *Backend) Len() int { return len(b.entries) }

var _ ports.Backend = (*Backend)(nil)
