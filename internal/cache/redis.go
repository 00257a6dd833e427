package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/astrobookings/config"
	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	rocketTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		rocketTTL: cfg.RocketTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetRocket(ctx context.Context, id string) (domain.Rocket, bool, error) {
	data, err := c.client.Get(ctx, rocketKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Rocket{}, false, nil
		}
		return domain.Rocket{}, false, err
	}

	var entry rocketEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return domain.Rocket{}, false, fmt.Errorf("decode cached rocket %s: %w", id, err)
	}
	return entry.toDomain(), true, nil
}

func (c *RedisCache) SetRocket(ctx context.Context, rocket domain.Rocket) error {
	payload, err := json.Marshal(newRocketEntry(rocket))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, rocketKey(rocket.ID), payload, c.rocketTTL).Err()
}

type rocketEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Speed    *int   `json:"speed,omitempty"`
	Range    string `json:"range"`
}

func newRocketEntry(r domain.Rocket) rocketEntry {
	return rocketEntry{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Speed: r.Speed, Range: string(r.Range)}
}

func (e rocketEntry) toDomain() domain.Rocket {
	return domain.Rocket{ID: e.ID, Name: e.Name, Capacity: e.Capacity, Speed: e.Speed, Range: domain.RocketRange(e.Range)}
}

func rocketKey(id string) string {
	return "cache:rocket:" + id
}
