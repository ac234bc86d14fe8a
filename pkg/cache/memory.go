package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type Memory struct {
	cache *gocache.Cache
}

// NewMemory returns an in-process cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Memory{cache: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	value, found := m.cache.Get(key)
	if !found {
		return "", false, nil
	}

	id, ok := value.(string)
	if !ok {
		return "", false, nil
	}

	return id, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.cache.SetDefault(key, value)

	return nil
}
