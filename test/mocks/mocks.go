package mocks

import (
	"context"
	"time"

	"github.com/polycache/polycache/internal/core/domain/cache"
	"github.com/polycache/polycache/internal/core/ports"
)

// BackendMock is a lightweight mock for ports.Backend
type BackendMock struct {
	GetFn     func(ctx context.Context, key string) (cache.Lookup, error)
	PutFn     func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFn  func(ctx context.Context, key string) error
	ClearFn   func(ctx context.Context) error
	CleanupFn func(ctx context.Context) error
	CloseFn   func() error

	ClearCalls   int
	CleanupCalls int
	CloseCalls   int
}

func (m *BackendMock) Get(ctx context.Context, key string) (cache.Lookup, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return cache.Lookup{Status: cache.StatusNotFound}, nil
}

func (m *BackendMock) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *BackendMock) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}

func (m *BackendMock) Clear(ctx context.Context) error {
	m.ClearCalls++
	if m.ClearFn != nil {
		return m.ClearFn(ctx)
	}
	return nil
}

func (m *BackendMock) Cleanup(ctx context.Context) error {
	m.CleanupCalls++
	if m.CleanupFn != nil {
		return m.CleanupFn(ctx)
	}
	return nil
}

func (m *BackendMock) Close() error {
	m.CloseCalls++
	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}

var _ ports.Backend = (*BackendMock)(nil)

// CacheMock is a lightweight mock for ports.Cache
type CacheMock struct {
	GetFn        func(ctx context.Context, registry, key string, def []byte) ([]byte, bool, error)
	PutFn        func(ctx context.Context, registry, key string, value []byte, ttl time.Duration) ([]byte, bool, error)
	DeleteFn     func(ctx context.Context, registry, key string) error
	ClearFn      func(ctx context.Context) error
	SweepFn      func(ctx context.Context)
	RegistriesFn func() []string
}

func (m *CacheMock) Get(ctx context.Context, registry, key string, def []byte) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, registry, key, def)
	}
	return def, false, nil
}

func (m *CacheMock) Put(ctx context.Context, registry, key string, value []byte, ttl time.Duration) ([]byte, bool, error) {
	if m.PutFn != nil {
		return m.PutFn(ctx, registry, key, value, ttl)
	}
	return value, true, nil
}

func (m *CacheMock) Delete(ctx context.Context, registry, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, registry, key)
	}
	return nil
}

func (m *CacheMock) Clear(ctx context.Context) error {
	if m.ClearFn != nil {
		return m.ClearFn(ctx)
	}
	return nil
}

func (m *CacheMock) Sweep(ctx context.Context) {
	if m.SweepFn != nil {
		m.SweepFn(ctx)
	}
}

func (m *CacheMock) Registries() []string {
	if m.RegistriesFn != nil {
		return m.RegistriesFn()
	}
	return nil
}

var _ ports.Cache = (*CacheMock)(nil)
