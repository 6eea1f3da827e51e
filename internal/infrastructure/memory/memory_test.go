package memory

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/polycache/polycache/internal/core/domain/cache"
)

func TestBackend_PutAndGet(t *testing.T) {
	b := New("items")
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
	b := New("items")

	got, err := b.Get(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != cache.StatusNotFound {
		t.Errorf("Get() status = %v, want StatusNotFound", got.Status)
	}
}

func TestBackend_Get_ExpiredStillPresent(t *testing.T) {
	b := New("items")
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
	if b.Len() != 1 {
		t.Errorf("Len() = %d after expired Get, want 1 (Get never removes entries)", b.Len())
	}
}

func TestBackend_Put_NoTTLNeverExpires(t *testing.T) {
	b := New("items")
	ctx := context.Background()

	if err := b.Put(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := b.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	got, _ := b.Get(ctx, "k")
	if got.Status != cache.StatusFound {
		t.Errorf("Get() status = %v after cleanup, want StatusFound", got.Status)
	}
}

func TestBackend_DeleteAbsentKey(t *testing.T) {
	b := New("items")

	if err := b.Delete(context.Background(), "missing"); err != nil {
		t.Errorf("Delete() of absent key error = %v, want nil", err)
	}
}

func TestBackend_Cleanup_RemovesOnlyExpired(t *testing.T) {
	b := New("items")
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

	if b.Len() != 2 {
		t.Fatalf("Len() = %d after cleanup, want 2", b.Len())
	}
	if got, _ := b.Get(ctx, "stale"); got.Status != cache.StatusNotFound {
		t.Errorf("Get(stale) status = %v, want StatusNotFound", got.Status)
	}
	if got, _ := b.Get(ctx, "live"); got.Status != cache.StatusFound {
		t.Errorf("Get(live) status = %v, want StatusFound", got.Status)
	}
}

func TestBackend_Clear(t *testing.T) {
	b := New("items")
	ctx := context.Background()

	_ = b.Put(ctx, "a", []byte("1"), time.Minute)
	_ = b.Put(ctx, "b", []byte("2"), 0)

	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d after clear, want 0", b.Len())
	}
}
