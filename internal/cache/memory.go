package cache

import (
	"context"
	"time"

	"github.com/Domenick1991/airreservations/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps route listings in process. It serves single-instance
// deployments that run without redis.
type MemoryCache struct {
	cache *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{cache: gocache.New(ttl, 2*ttl)}
}

func (c *MemoryCache) GetFlights(_ context.Context, origin, destination string) ([]domain.Flight, bool, error) {
	v, found := c.cache.Get(flightsKey(origin, destination))
	if !found {
		return nil, false, nil
	}
	flights, ok := v.([]domain.Flight)
	if !ok {
		return nil, false, nil
	}
	return append([]domain.Flight(nil), flights...), true, nil
}

func (c *MemoryCache) SetFlights(_ context.Context, origin, destination string, flights []domain.Flight) error {
	c.cache.SetDefault(flightsKey(origin, destination), append([]domain.Flight(nil), flights...))
	return nil
}

func (c *MemoryCache) InvalidateFlights(_ context.Context, origin, destination string) error {
	c.cache.Delete(flightsKey(origin, destination))
	return nil
}
