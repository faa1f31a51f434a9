package storage

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupPeriod = 10 * time.Minute

// MemoryBackend keeps values for the lifetime of the process only
type MemoryBackend struct {
	cache *gocache.Cache
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		cache: gocache.New(gocache.NoExpiration, memoryCleanupPeriod),
	}
}

func (m *MemoryBackend) Name() string {
	return "memory"
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	data, found := m.cache.Get(key)
	if !found {
		return "", ErrKeyNotFound
	}
	value, ok := data.(string)
	if !ok {
		m.cache.Delete(key)
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.cache.Set(key, value, gocache.NoExpiration)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	if _, found := m.cache.Get(key); !found {
		return ErrKeyNotFound
	}
	m.cache.Delete(key)
	return nil
}
