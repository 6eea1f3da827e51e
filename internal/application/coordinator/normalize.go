package coordinator

import (
	"fmt"

	"github.com/polycache/polycache/internal/core/domain/cache"
)

// normalize maps a raw backend reply onto the canonical read triple. This is
// the single place that decides stale data is indistinguishable from absent
// data to the caller, while a later sweep still reclaims it physically.
//
//	Found(v)        -> (v, true, nil)
//	FoundExpired(v) -> (def, false, nil)
//	NotFound        -> (def, false, nil)
//	backend error   -> (nil, false, err)
//	anything else   -> (nil, false, ErrUnexpectedResponse)
func normalize(raw cache.Lookup, err error, def []byte) ([]byte, bool, error) {
	if err != nil {
		return nil, false, err
	}
	switch raw.Status {
	case cache.StatusFound:
		return raw.Value, true, nil
	case cache.StatusFoundExpired, cache.StatusNotFound:
		return def, false, nil
	default:
		return nil, false, fmt.Errorf("%w: status %d", cache.ErrUnexpectedResponse, raw.Status)
	}
}
