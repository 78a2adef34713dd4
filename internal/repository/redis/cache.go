package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"walink/internal/domain"
	"walink/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// cachedLink omits click_count; a cached copy must never serve stale counters
type cachedLink struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	DestinationURI string    `json:"destination_uri"`
	PhoneNumber    string    `json:"phone_number"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// Cache keeps slug -> link mappings in Redis under "link:{slug}"
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new Redis cache
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
	}
}

func linkKey(slug string) string {
	return "link:" + slug
}

// GetLink returns (nil, nil) on a cache miss
func (c *Cache) GetLink(ctx context.Context, slug string) (*domain.ShortLink, error) {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	}()

	data, err := c.client.Get(ctx, linkKey(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	metrics.RecordCacheHit()

	var cached cachedLink
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached link: %w", err)
	}

	return &domain.ShortLink{
		ID:             cached.ID,
		Slug:           cached.Slug,
		DestinationURI: cached.DestinationURI,
		PhoneNumber:    cached.PhoneNumber,
		Message:        cached.Message,
		CreatedAt:      cached.CreatedAt,
	}, nil
}

// SetLink stores the link with the configured TTL
func (c *Cache) SetLink(ctx context.Context, link *domain.ShortLink) error {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())
	}()

	data, err := json.Marshal(cachedLink{
		ID:             link.ID,
		Slug:           link.Slug,
		DestinationURI: link.DestinationURI,
		PhoneNumber:    link.PhoneNumber,
		Message:        link.Message,
		CreatedAt:      link.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal link: %w", err)
	}

	if err := c.client.Set(ctx, linkKey(link.Slug), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// DeleteLink evicts a slug, used when a link is deleted
func (c *Cache) DeleteLink(ctx context.Context, slug string) error {
	if err := c.client.Del(ctx, linkKey(slug)).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// Clear removes all cached links and reports how many were dropped
func (c *Cache) Clear(ctx context.Context) (int, error) {
	iter := c.client.Scan(ctx, 0, linkKey("*"), 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan error: %w", err)
	}

	if len(keys) == 0 {
		return 0, nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("redis delete error: %w", err)
	}
	return len(keys), nil
}

// NopCache is used when Redis is not configured; every lookup is a miss
type NopCache struct{}

func (NopCache) GetLink(context.Context, string) (*domain.ShortLink, error) { return nil, nil }
func (NopCache) SetLink(context.Context, *domain.ShortLink) error           { return nil }
func (NopCache) DeleteLink(context.Context, string) error                   { return nil }

// InitRedis connects to Redis and verifies the connection with PING
func InitRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
