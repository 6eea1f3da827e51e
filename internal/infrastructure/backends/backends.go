package backends

import (
	"github.com/polycache/polycache/internal/core/ports"
	"github.com/polycache/polycache/internal/infrastructure/boltdb"
	"github.com/polycache/polycache/internal/infrastructure/memory"
	"github.com/polycache/polycache/internal/infrastructure/objectstore"
	rediscache "github.com/polycache/polycache/internal/infrastructure/redis"
	"github.com/polycache/polycache/internal/infrastructure/sqldb"
)

// Openers returns the full backend factory map handed to the coordinator.
// Per-registry options select engine specifics; which kinds exist at all is
// decided here, at composition time.
func Openers() map[string]ports.Opener {
	return map[string]ports.Opener{
		"memory": memory.Opener,
		"sql":    sqldb.Open,
		"bolt":   boltdb.Open,
		"s3":     objectstore.Open,
		"redis":  rediscache.Open,
	}
}
