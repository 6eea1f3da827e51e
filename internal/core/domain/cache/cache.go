package cache

import (
	"encoding/binary"
	"errors"
	"time"
)

// Status classifies the raw outcome of a backend read before normalization.
type Status int

const (
	// StatusNotFound means no entry is physically present for the key.
	StatusNotFound Status = iota
	// StatusFound means a live entry was read.
	StatusFound
	// StatusFoundExpired means an entry is still physically present but its
	// expiry has passed. It is reported as such (not as a miss) so the
	// coordinator can decide how stale data is surfaced; a sweep reclaims
	// the entry later.
	StatusFoundExpired
)

// Lookup is the raw reply of a backend read.
type Lookup struct {
	Status Status
	Value  []byte
}

// NeverExpires is the stored expiry sentinel for entries without a TTL.
const NeverExpires int64 = 0

// ExpiresAt computes the absolute expiry in Unix milliseconds for an entry
// stored at now with the given TTL. ttl <= 0 yields NeverExpires.
func ExpiresAt(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return NeverExpires
	}
	return now.Add(ttl).UnixMilli()
}

// Expired reports whether an entry with the stored expiry is stale at now.
func Expired(expiresAtMs int64, now time.Time) bool {
	return expiresAtMs != NeverExpires && expiresAtMs < now.UnixMilli()
}

var errMalformedEntry = errors.New("malformed cache entry")

// EncodeEntry frames a value together with its absolute expiry for engines
// that store a single opaque byte payload per key.
// Layout: 8 bytes big endian expiry (Unix ms) followed by the raw value.
func EncodeEntry(expiresAtMs int64, value []byte) []byte {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(expiresAtMs))
	copy(buf[8:], value)
	return buf
}

// DecodeEntry splits a payload produced by EncodeEntry back into expiry and
// value. The value slice is a copy, safe to retain after the backing buffer
// is released.
func DecodeEntry(buf []byte) (expiresAtMs int64, value []byte, err error) {
	if len(buf) < 8 {
		return 0, nil, errMalformedEntry
	}
	expiresAtMs = int64(binary.BigEndian.Uint64(buf[:8]))
	value = make([]byte, len(buf)-8)
	copy(value, buf[8:])
	return expiresAtMs, value, nil
}
