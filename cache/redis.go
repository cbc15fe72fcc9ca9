package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"truthlens/models"
)

const trendingKey = "truthlens:trending"

// ErrMiss is returned for absent keys and by a disabled cache.
var ErrMiss = errors.New("cache miss")

// Cache is an optional Redis cache. A nil *Cache is valid and always misses.
type Cache struct {
	rdb *redis.Client
}

// Open connects to Redis. url is either a redis:// URL or host:port. An
// empty url or an unreachable server yields a nil cache.
func Open(ctx context.Context, url string) *Cache {
	if url == "" {
		log.Println("[CACHE] ⚠ REDIS_URL not set, running without cache")
		return nil
	}

	opts := &redis.Options{Addr: url}
	if strings.Contains(url, "://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			log.Printf("[CACHE] ⚠ Invalid REDIS_URL: %v", err)
			return nil
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		log.Printf("[CACHE] ⚠ Redis unavailable: %v", err)
		rdb.Close()
		return nil
	}

	log.Println("[CACHE] ✓ Connected to Redis")
	return &Cache{rdb: rdb}
}

// New wraps an existing client.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if c == nil {
		return "", ErrMiss
	}
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (c *Cache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

func (c *Cache) GetTrending(ctx context.Context) ([]models.TrendingArticle, error) {
	raw, err := c.Get(ctx, trendingKey)
	if err != nil {
		return nil, err
	}
	var articles []models.TrendingArticle
	if err := json.Unmarshal([]byte(raw), &articles); err != nil {
		return nil, fmt.Errorf("decode cached headlines: %w", err)
	}
	return articles, nil
}

func (c *Cache) SetTrending(ctx context.Context, articles []models.TrendingArticle, ttl time.Duration) error {
	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("encode headlines: %w", err)
	}
	return c.Set(ctx, trendingKey, string(data), ttl)
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
