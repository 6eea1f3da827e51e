package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/polycache/polycache/internal/core/domain/cache"
	"github.com/polycache/polycache/internal/core/ports"
)

// Backend is the distributed-cache backend. Entries never get a native
// redis TTL: the expiry rides inside the payload (cache.EncodeEntry) so a
// stale entry is still readable as FoundExpired until a sweep reclaims it,
// matching the expiry policy of the other backends.
type Backend struct {
	client *redis.Client
	// key prefix namespacing this registry's entries
	ns string
}

// Open initializes the backend for one registry. Recognized options:
//
//	addr     — host:port, defaults to "localhost:6379"
//	password — optional auth
//	db       — logical database index
//	prefix   — global key prefix, defaults to "polycache"
func Open(ctx context.Context, registry string, options map[string]string) (ports.Backend, error) {
	addr := options["addr"]
	if addr == "" {
		addr = "localhost:6379"
	}
	db := 0
	if raw := options["db"]; raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid db option %q: %w", raw, err)
		}
		db = parsed
	}
	prefix := options["prefix"]
	if prefix == "" {
		prefix = "polycache"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: options["password"],
		DB:       db,
	})

	// Test the connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Backend{client: client, ns: prefix + ":" + registry}, nil
}

func (b *Backend) namespaced(key string) string {
	return b.ns + ":" + key
}

func (b *Backend) Get(ctx context.Context, key string) (cache.Lookup, error) {
	raw, err := b.client.Get(ctx, b.namespaced(key)).Bytes()
	if err == redis.Nil {
		return cache.Lookup{Status: cache.StatusNotFound}, nil
	}
	if err != nil {
		return cache.Lookup{}, fmt.Errorf("failed to read %s: %w", b.ns, err)
	}

	expiresAt, value, err := cache.DecodeEntry(raw)
	if err != nil {
		return cache.Lookup{}, fmt.Errorf("entry for %s: %w", b.ns, err)
	}
	if cache.Expired(expiresAt, time.Now()) {
		return cache.Lookup{Status: cache.StatusFoundExpired, Value: value}, nil
	}
	return cache.Lookup{Status: cache.StatusFound, Value: value}, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	buf := cache.EncodeEntry(cache.ExpiresAt(time.Now(), ttl), value)
	if err := b.client.Set(ctx, b.namespaced(key), buf, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", b.ns, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.namespaced(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", b.ns, err)
	}
	return nil
}

func (b *Backend) Clear(ctx context.Context) error {
	iter := b.client.Scan(ctx, 0, b.ns+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := b.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to clear %s: %w", b.ns, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", b.ns, err)
	}
	return nil
}

func (b *Backend) Cleanup(ctx context.Context) error {
	now := time.Now()
	iter := b.client.Scan(ctx, 0, b.ns+":*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := b.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", b.ns, err)
		}
		expiresAt, _, err := cache.DecodeEntry(raw)
		if err != nil {
			return fmt.Errorf("entry for %s: %w", b.ns, err)
		}
		if cache.Expired(expiresAt, now) {
			if err := b.client.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", b.ns, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", b.ns, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}

var _ ports.Backend = (*Backend)(nil)
