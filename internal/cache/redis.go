package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airreservations/config"
	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it still holds the caller's token,
// so an expired lock taken over by another worker is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

// GetFlights returns the cached listing of a route. ok is false on a miss.
func (c *RedisCache) GetFlights(ctx context.Context, origin, destination string) ([]domain.Flight, bool, error) {
	data, err := c.client.Get(ctx, flightsKey(origin, destination)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, false, err
	}
	return flights, true, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, origin, destination string, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(origin, destination), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context, origin, destination string) error {
	return c.client.Del(ctx, flightsKey(origin, destination)).Err()
}

// AcquireDepartureLock takes the cross-process lock of one (flight, date)
// pair. The returned token must be handed back to ReleaseDepartureLock.
func (c *RedisCache) AcquireDepartureLock(ctx context.Context, flightNumber string, departure domain.Date, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, departureLockKey(flightNumber, departure), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (c *RedisCache) ReleaseDepartureLock(ctx context.Context, flightNumber string, departure domain.Date, token string) error {
	return releaseScript.Run(ctx, c.client, []string{departureLockKey(flightNumber, departure)}, token).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func flightsKey(origin, destination string) string {
	return fmt.Sprintf("cache:flights:%s:%s", origin, destination)
}

func departureLockKey(flightNumber string, departure domain.Date) string {
	return fmt.Sprintf("lock:flight:%s:date:%s", flightNumber, departure.String())
}
