package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/polycache/polycache/internal/core/domain/cache"
	"github.com/polycache/polycache/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// Built-in policy defaults, applied when config leaves a field unset.
const (
	DefaultTTL             = 24 * time.Hour
	DefaultCleanupInterval = time.Hour

	// DefaultKind is the backend kind used for registries with no explicit
	// configuration, and the fallback when another kind fails to open.
	DefaultKind = "memory"
)

// RegistryConfig binds one registry name to a backend kind and its
// engine-specific options. An empty Kind selects DefaultKind.
type RegistryConfig struct {
	Name    string
	Kind    string
	Options map[string]string
}

// Config carries the coordinator's construction-time policy. Registries are
// fixed at startup; there is no dynamic registry creation.
type Config struct {
	// DefaultTTL applies when Put is called with ttl 0. Zero selects the
	// built-in default; a negative value makes unspecified puts
	// never-expiring.
	DefaultTTL time.Duration
	// CleanupInterval is the advisory pause between sweeps. Zero selects
	// the built-in default; a negative value disables the sweep loop.
	CleanupInterval time.Duration
	Registries      []RegistryConfig
}

type binding struct {
	name    string
	backend ports.Backend
}

// Coordinator routes cache operations to per-registry backends behind one
// contract and one response shape, and owns the TTL/expiration policy.
//
// It is a single-writer serialization point: every public operation and the
// internal sweep run one at a time under one mutex, regardless of target
// registry. That yields a total order over all operations on one instance —
// an operation that completes before another is submitted is observed to
// happen before it by every later caller. The cost is head-of-line blocking:
// a slow backend call stalls operations queued behind it for all registries.
type Coordinator struct {
	mu       sync.Mutex
	bindings []binding
	byName   map[string]ports.Backend

	defaultTTL time.Duration
	interval   time.Duration

	id     string
	logger *logrus.Logger

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	closed   bool
}

// Start resolves the effective policy, opens one backend per configured
// registry and schedules the sweep loop. A backend that fails to open is
// replaced by a fresh memory backend after a diagnostic — startup only fails
// if that fallback itself cannot be built.
func Start(ctx context.Context, cfg Config, openers map[string]ports.Opener, logger *logrus.Logger) (*Coordinator, error) {
	if logger == nil {
		logger = logrus.New()
	}

	ttl := cfg.DefaultTTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	interval := cfg.CleanupInterval
	if interval == 0 {
		interval = DefaultCleanupInterval
	}

	fallback, ok := openers[DefaultKind]
	if !ok {
		return nil, fmt.Errorf("no opener registered for fallback kind %q", DefaultKind)
	}

	c := &Coordinator{
		byName:     make(map[string]ports.Backend, len(cfg.Registries)),
		defaultTTL: ttl,
		interval:   interval,
		id:         uuid.NewString(),
		logger:     logger,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}

	for _, rc := range cfg.Registries {
		if rc.Name == "" {
			return nil, fmt.Errorf("registry with empty name in configuration")
		}
		if _, dup := c.byName[rc.Name]; dup {
			return nil, fmt.Errorf("registry %q configured twice", rc.Name)
		}

		kind := rc.Kind
		if kind == "" {
			kind = DefaultKind
		}

		var (
			backend ports.Backend
			err     error
		)
		if opener, known := openers[kind]; known {
			backend, err = opener(ctx, rc.Name, rc.Options)
		} else {
			err = fmt.Errorf("unknown backend kind %q", kind)
		}
		if err != nil {
			logger.WithFields(logrus.Fields{
				"registry": rc.Name,
				"backend":  kind,
			}).WithError(err).Warn("backend init failed, falling back to memory")
			backend, err = fallback(ctx, rc.Name, nil)
			if err != nil {
				return nil, fmt.Errorf("fallback init for registry %q: %w", rc.Name, err)
			}
		}

		c.bindings = append(c.bindings, binding{name: rc.Name, backend: backend})
		c.byName[rc.Name] = backend
	}

	logger.WithFields(logrus.Fields{
		"coordinator": c.id,
		"registries":  len(c.bindings),
		"default_ttl": ttl.String(),
	}).Info("cache coordinator started")

	go c.sweepLoop()

	return c, nil
}

// Get implements ports.Cache. A miss returns def; an expired entry is a
// miss, never an error.
func (c *Coordinator) Get(ctx context.Context, registry, key string, def []byte) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	backend, ok := c.byName[registry]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", cache.ErrRegistryNotFound, registry)
	}

	raw, err := backend.Get(ctx, key)
	value, hit, err := normalize(raw, err, def)
	switch {
	case err != nil:
		cacheErrors.WithLabelValues(registry, "get").Inc()
	case hit:
		cacheHits.WithLabelValues(registry).Inc()
	default:
		cacheMisses.WithLabelValues(registry).Inc()
	}
	return value, hit, err
}

// Put implements ports.Cache. ttl 0 applies the coordinator default; a
// negative ttl stores a never-expiring entry. On success the stored value is
// echoed back so callers can chain.
func (c *Coordinator) Put(ctx context.Context, registry, key string, value []byte, ttl time.Duration) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	backend, ok := c.byName[registry]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", cache.ErrRegistryNotFound, registry)
	}

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := backend.Put(ctx, key, value, ttl); err != nil {
		cacheErrors.WithLabelValues(registry, "put").Inc()
		return nil, false, err
	}
	return value, true, nil
}

// Delete implements ports.Cache. Deleting an absent key is not an error.
func (c *Coordinator) Delete(ctx context.Context, registry, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	backend, ok := c.byName[registry]
	if !ok {
		return fmt.Errorf("%w: %q", cache.ErrRegistryNotFound, registry)
	}
	if err := backend.Delete(ctx, key); err != nil {
		cacheErrors.WithLabelValues(registry, "delete").Inc()
		return err
	}
	return nil
}

// Clear implements ports.Cache. Every binding is attempted even after a
// failure; the first error encountered wins.
func (c *Coordinator) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for _, b := range c.bindings {
		if err := b.backend.Clear(ctx); err != nil {
			cacheErrors.WithLabelValues(b.name, "clear").Inc()
			c.logger.WithField("registry", b.name).WithError(err).Warn("clear failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Sweep implements ports.Cache: one cleanup pass over every binding.
// Individual failures are logged and ignored so one misbehaving backend
// cannot abort the sweep of the others.
func (c *Coordinator) Sweep(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range c.bindings {
		if err := b.backend.Cleanup(ctx); err != nil {
			cacheErrors.WithLabelValues(b.name, "cleanup").Inc()
			c.logger.WithFields(logrus.Fields{
				"coordinator": c.id,
				"registry":    b.name,
			}).WithError(err).Warn("cleanup sweep failed")
		}
	}
	sweepsTotal.Inc()
}

// Registries implements ports.Cache.
func (c *Coordinator) Registries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, len(c.bindings))
	for i, b := range c.bindings {
		names[i] = b.name
	}
	return names
}

// Stop halts the sweep loop and closes every backend. Safe to call more
// than once; the first backend close failure is returned.
func (c *Coordinator) Stop() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	<-c.doneCh

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var firstErr error
	for _, b := range c.bindings {
		if err := b.backend.Close(); err != nil {
			c.logger.WithField("registry", b.name).WithError(err).Warn("backend close failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// sweepLoop drives periodic sweeps. The interval is advisory: a sweep
// delayed behind queued operations does not catch up.
func (c *Coordinator) sweepLoop() {
	defer close(c.doneCh)

	if c.interval < 0 {
		return
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep(context.Background())
		case <-c.stopCh:
			return
		}
	}
}

var _ ports.Cache = (*Coordinator)(nil)
