package boltdb

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/polycache/polycache/internal/core/domain/cache"
	"github.com/polycache/polycache/internal/core/ports"
)

func openTestBackend(t *testing.T) ports.Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.cache.db")
	b, err := Open(context.Background(), "items", map[string]string{"path": path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackend_PutGetRoundTrip(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	if err := b.Put(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := b.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != cache.StatusFound {
		t.Errorf("Get() status = %v, want StatusFound", got.Status)
	}
	if !bytes.Equal(got.Value, []byte("v")) {
		t.Errorf("Get() value = %q, want %q", got.Value, "v")
	}
}

func TestBackend_Get_NotFound(t *testing.T) {
	b := openTestBackend(t)

	got, err := b.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != cache.StatusNotFound {
		t.Errorf("Get() status = %v, want StatusNotFound", got.Status)
	}
}

func TestBackend_ExpiredReportedNotRemoved(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	if err := b.Put(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	got, err := b.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != cache.StatusFoundExpired {
		t.Errorf("Get() status = %v, want StatusFoundExpired", got.Status)
	}
	if !bytes.Equal(got.Value, []byte("v")) {
		t.Errorf("Get() stale value = %q, want %q", got.Value, "v")
	}
}

func TestBackend_Cleanup_RemovesOnlyExpired(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	if err := b.Put(ctx, "stale", []byte("1"), time.Millisecond); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := b.Put(ctx, "live", []byte("2"), time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := b.Put(ctx, "forever", []byte("3"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if err := b.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	if got, _ := b.Get(ctx, "stale"); got.Status != cache.StatusNotFound {
		t.Errorf("Get(stale) status = %v, want StatusNotFound", got.Status)
	}
	if got, _ := b.Get(ctx, "live"); got.Status != cache.StatusFound {
		t.Errorf("Get(live) status = %v, want StatusFound", got.Status)
	}
	if got, _ := b.Get(ctx, "forever"); got.Status != cache.StatusFound {
		t.Errorf("Get(forever) status = %v, want StatusFound", got.Status)
	}
}

func TestBackend_DeleteAndClear(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	if err := b.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() of absent key error = %v, want nil", err)
	}

	_ = b.Put(ctx, "a", []byte("1"), time.Minute)
	_ = b.Put(ctx, "b", []byte("2"), 0)

	if err := b.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, _ := b.Get(ctx, "b"); got.Status != cache.StatusNotFound {
		t.Errorf("Get(b) status = %v after clear, want StatusNotFound", got.Status)
	}
}

func TestBackend_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.cache.db")
	ctx := context.Background()

	b, err := Open(ctx, "items", map[string]string{"path": path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := b.Put(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	b, err = Open(ctx, "items", map[string]string{"path": path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer b.Close()

	got, err := b.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != cache.StatusFound || !bytes.Equal(got.Value, []byte("v")) {
		t.Errorf("Get() after reopen = (%v, %q), want (StatusFound, %q)", got.Status, got.Value, "v")
	}
}
