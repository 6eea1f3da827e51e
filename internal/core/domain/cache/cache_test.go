package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestExpiresAt_NoTTL(t *testing.T) {
	now := time.Now()

	if got := ExpiresAt(now, 0); got != NeverExpires {
		t.Errorf("ExpiresAt(now, 0) = %d, want sentinel %d", got, NeverExpires)
	}
	if got := ExpiresAt(now, -time.Second); got != NeverExpires {
		t.Errorf("ExpiresAt(now, -1s) = %d, want sentinel %d", got, NeverExpires)
	}
}

func TestExpiresAt_WithTTL(t *testing.T) {
	now := time.Now()

	got := ExpiresAt(now, 5*time.Second)
	want := now.Add(5 * time.Second).UnixMilli()
	if got != want {
		t.Errorf("ExpiresAt(now, 5s) = %d, want %d", got, want)
	}
	if got <= now.UnixMilli() {
		t.Errorf("ExpiresAt(now, 5s) = %d is not in the future", got)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()

	if Expired(NeverExpires, now) {
		t.Error("Expired() should be false for the never-expires sentinel")
	}
	if Expired(now.Add(time.Minute).UnixMilli(), now) {
		t.Error("Expired() should be false for a future expiry")
	}
	if !Expired(now.Add(-time.Minute).UnixMilli(), now) {
		t.Error("Expired() should be true for a past expiry")
	}
}

func TestEncodeDecodeEntry(t *testing.T) {
	value := []byte(`{"n":1}`)
	buf := EncodeEntry(1234567890, value)

	exp, got, err := DecodeEntry(buf)
	if err != nil {
		t.Fatalf("DecodeEntry() error = %v", err)
	}
	if exp != 1234567890 {
		t.Errorf("DecodeEntry() expiry = %d, want 1234567890", exp)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("DecodeEntry() value = %q, want %q", got, value)
	}
}

func TestEncodeDecodeEntry_EmptyValue(t *testing.T) {
	buf := EncodeEntry(NeverExpires, nil)

	exp, got, err := DecodeEntry(buf)
	if err != nil {
		t.Fatalf("DecodeEntry() error = %v", err)
	}
	if exp != NeverExpires {
		t.Errorf("DecodeEntry() expiry = %d, want sentinel", exp)
	}
	if len(got) != 0 {
		t.Errorf("DecodeEntry() value = %q, want empty", got)
	}
}

func TestDecodeEntry_Malformed(t *testing.T) {
	if _, _, err := DecodeEntry([]byte{1, 2, 3}); err == nil {
		t.Error("DecodeEntry() should fail on a short buffer")
	}
}
