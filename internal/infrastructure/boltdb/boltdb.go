package boltdb

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/polycache/polycache/internal/core/domain/cache"
	"github.com/polycache/polycache/internal/core/ports"
)

// Backend is a single-file on-disk backend built on Bolt. Each registry
// opens its own file with one bucket named after the registry; entry
// payloads carry their expiry in the cache.EncodeEntry framing.
type Backend struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the backend for one registry. Recognized options:
//
//	path — database file path; defaults to "<registry>.cache.db"
func Open(_ context.Context, registry string, options map[string]string) (ports.Backend, error) {
	path := options["path"]
	if path == "" {
		path = registry + ".cache.db"
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt file %s: %w", path, err)
	}

	bucket := []byte(registry)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", registry, err)
	}

	return &Backend{db: db, bucket: bucket}, nil
}

func (b *Backend) Get(_ context.Context, key string) (cache.Lookup, error) {
	var lookup cache.Lookup
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(b.bucket).Get([]byte(key))
		if raw == nil {
			lookup = cache.Lookup{Status: cache.StatusNotFound}
			return nil
		}
		expiresAt, value, err := cache.DecodeEntry(raw)
		if err != nil {
			return err
		}
		// DecodeEntry copies the value, so it outlives the transaction.
		if cache.Expired(expiresAt, time.Now()) {
			lookup = cache.Lookup{Status: cache.StatusFoundExpired, Value: value}
		} else {
			lookup = cache.Lookup{Status: cache.StatusFound, Value: value}
		}
		return nil
	})
	if err != nil {
		return cache.Lookup{}, fmt.Errorf("failed to read bucket %s: %w", b.bucket, err)
	}
	return lookup, nil
}

func (b *Backend) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := cache.EncodeEntry(cache.ExpiresAt(time.Now(), ttl), value)
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), buf)
	})
	if err != nil {
		return fmt.Errorf("failed to write bucket %s: %w", b.bucket, err)
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete from bucket %s: %w", b.bucket, err)
	}
	return nil
}

func (b *Backend) Clear(_ context.Context) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(b.bucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(b.bucket)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear bucket %s: %w", b.bucket, err)
	}
	return nil
}

func (b *Backend) Cleanup(_ context.Context) error {
	now := time.Now()
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(b.bucket)
		var stale [][]byte
		c := bkt.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			expiresAt, _, err := cache.DecodeEntry(v)
			if err != nil {
				return err
			}
			if cache.Expired(expiresAt, now) {
				key := make([]byte, len(k))
				copy(key, k)
				stale = append(stale, key)
			}
		}
		for _, k := range stale {
			if err := bkt.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clean up bucket %s: %w", b.bucket, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

var _ ports.Backend = (*Backend)(nil)
