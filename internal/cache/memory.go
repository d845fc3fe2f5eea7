package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/neexbeast/tripplanner/internal/geocode"
)

// Memory is an in-process location cache. It is safe for concurrent use.
type Memory struct {
	items *gocache.Cache
}

// NewMemory constructs a Memory cache. A zero ttl never expires entries.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		return &Memory{items: gocache.New(ttl, 0)}
	}
	return &Memory{items: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, city string) (*geocode.Location, error) {
	v, ok := m.items.Get(key(city))
	if !ok {
		return nil, nil
	}
	loc := v.(geocode.Location)
	return &loc, nil
}

func (m *Memory) Put(_ context.Context, city string, loc geocode.Location) error {
	m.items.SetDefault(key(city), loc)
	return nil
}
