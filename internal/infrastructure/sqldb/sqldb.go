package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/polycache/polycache/internal/core/domain/cache"
	"github.com/polycache/polycache/internal/core/ports"
)

// Backend stores one physical table per registry, keyed by the cache key and
// holding (key, value, expires_at_ms). The expiry sentinel 0 means
// never-expires, so existing tables written by earlier deployments stay
// readable.
type Backend struct {
	db    *sqlx.DB
	table string

	getStmt     string
	upsertStmt  string
	deleteStmt  string
	clearStmt   string
	cleanupStmt string
}

type row struct {
	Value       []byte `db:"value"`
	ExpiresAtMs int64  `db:"expires_at_ms"`
}

// Open initializes the backend for one registry. Recognized options:
//
//	driver — sql driver name, "sqlite3" (default) or "postgres"
//	dsn    — data source name; defaults to "cache_<registry>.db" for sqlite3
func Open(ctx context.Context, registry string, options map[string]string) (ports.Backend, error) {
	driver := options["driver"]
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := options["dsn"]
	if dsn == "" {
		if driver != "sqlite3" {
			return nil, fmt.Errorf("sqldb: dsn option is required for driver %q", driver)
		}
		dsn = fmt.Sprintf("cache_%s.db", registry)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	table := tableName(registry)
	blob := "BLOB"
	if driver == "postgres" {
		blob = "BYTEA"
	}
	ddl := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value %s NOT NULL, expires_at_ms BIGINT NOT NULL)`,
		table, blob,
	)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	b := &Backend{db: db, table: table}
	b.getStmt = db.Rebind(fmt.Sprintf(`SELECT value, expires_at_ms FROM %s WHERE key = ?`, table))
	b.upsertStmt = db.Rebind(fmt.Sprintf(
		`INSERT INTO %s (key, value, expires_at_ms) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at_ms = excluded.expires_at_ms`,
		table,
	))
	b.deleteStmt = db.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, table))
	b.clearStmt = fmt.Sprintf(`DELETE FROM %s`, table)
	b.cleanupStmt = db.Rebind(fmt.Sprintf(
		`DELETE FROM %s WHERE expires_at_ms != %d AND expires_at_ms < ?`,
		table, cache.NeverExpires,
	))
	return b, nil
}

// tableName derives the per-registry table, restricted to a safe identifier
// set because the registry name is interpolated into DDL.
func tableName(registry string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(registry) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return "cache_" + sb.String()
}

func (b *Backend) Get(ctx context.Context, key string) (cache.Lookup, error) {
	var r row
	err := b.db.GetContext(ctx, &r, b.getStmt, key)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.Lookup{Status: cache.StatusNotFound}, nil
	}
	if err != nil {
		return cache.Lookup{}, fmt.Errorf("failed to read %s: %w", b.table, err)
	}
	if cache.Expired(r.ExpiresAtMs, time.Now()) {
		return cache.Lookup{Status: cache.StatusFoundExpired, Value: r.Value}, nil
	}
	return cache.Lookup{Status: cache.StatusFound, Value: r.Value}, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := cache.ExpiresAt(time.Now(), ttl)
	if _, err := b.db.ExecContext(ctx, b.upsertStmt, key, value, expiresAt); err != nil {
		return fmt.Errorf("failed to write %s: %w", b.table, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, b.deleteStmt, key); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", b.table, err)
	}
	return nil
}

func (b *Backend) Clear(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, b.clearStmt); err != nil {
		return fmt.Errorf("failed to clear %s: %w", b.table, err)
	}
	return nil
}

func (b *Backend) Cleanup(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, b.cleanupStmt, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to clean up %s: %w", b.table, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

var _ ports.Backend = (*Backend)(nil)
