package integration_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/polycache/polycache/internal/application/coordinator"
	"github.com/polycache/polycache/internal/core/ports"
	"github.com/polycache/polycache/internal/infrastructure/boltdb"
	"github.com/polycache/polycache/internal/infrastructure/memory"
	"github.com/polycache/polycache/internal/infrastructure/sqldb"
)

// Exercises the coordinator against real local storage engines: the same
// operation sequence must behave identically whether a registry is backed by
// the in-memory table, a sqlite table, or a bolt file.
func TestCoordinator_AcrossLocalBackends(t *testing.T) {
	dir := t.TempDir()
	cfg := coordinator.Config{
		DefaultTTL:      time.Minute,
		CleanupInterval: -1,
		Registries: []coordinator.RegistryConfig{
			{Name: "scratch"},
			{Name: "tables", Kind: "sql", Options: map[string]string{
				"dsn": filepath.Join(dir, "tables.db"),
			}},
			{Name: "files", Kind: "bolt", Options: map[string]string{
				"path": filepath.Join(dir, "files.cache.db"),
			}},
		},
	}

	c, err := coordinator.Start(context.Background(), cfg, map[string]ports.Opener{
		"memory": memory.Opener,
		"sql":    sqldb.Open,
		"bolt":   boltdb.Open,
	}, nil)
	require.NoError(t, err)
	defer c.Stop()
	ctx := context.Background()

	for _, registry := range c.Registries() {
		_, hit, err := c.Get(ctx, registry, "k", []byte("default"))
		require.NoError(t, err)
		require.False(t, hit, "%s starts empty", registry)

		stored, hit, err := c.Put(ctx, registry, "k", []byte(`{"n":1}`), 0)
		require.NoError(t, err)
		require.True(t, hit)
		require.Equal(t, []byte(`{"n":1}`), stored)

		value, hit, err := c.Get(ctx, registry, "k", nil)
		require.NoError(t, err)
		require.True(t, hit, "%s round trip", registry)
		require.Equal(t, []byte(`{"n":1}`), value)

		_, _, err = c.Put(ctx, registry, "short", []byte("gone soon"), 50*time.Millisecond)
		require.NoError(t, err)
	}

	time.Sleep(100 * time.Millisecond)
	c.Sweep(ctx)

	for _, registry := range c.Registries() {
		_, hit, err := c.Get(ctx, registry, "short", nil)
		require.NoError(t, err)
		require.False(t, hit, "%s expired entry misses after sweep", registry)

		_, hit, err = c.Get(ctx, registry, "k", nil)
		require.NoError(t, err)
		require.True(t, hit, "%s live entry survives sweep", registry)
	}

	require.NoError(t, c.Clear(ctx))

	for _, registry := range c.Registries() {
		_, hit, err := c.Get(ctx, registry, "k", nil)
		require.NoError(t, err)
		require.False(t, hit, "%s is empty after clear", registry)
	}
}

// Operations on the same key are strictly ordered by submission: the last
// completed put wins for every later read, across goroutines.
func TestCoordinator_SerializedWrites(t *testing.T) {
	cfg := coordinator.Config{
		CleanupInterval: -1,
		Registries:      []coordinator.RegistryConfig{{Name: "items"}},
	}
	c, err := coordinator.Start(context.Background(), cfg, map[string]ports.Opener{"memory": memory.Opener}, nil)
	require.NoError(t, err)
	defer c.Stop()
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n byte) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				_, _, err := c.Put(ctx, "items", "k", []byte{n}, 0)
				require.NoError(t, err)
				value, hit, err := c.Get(ctx, "items", "k", nil)
				require.NoError(t, err)
				require.True(t, hit)
				require.Len(t, value, 1)
			}
		}(byte(i))
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	value, hit, err := c.Get(ctx, "items", "k", nil)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, value, 1)
}
