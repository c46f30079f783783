package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/storelink/shiprocket-bridge/internal/pkg/env"
)

const cacheKeyPrefix = "catalog:"

// PageCache is an optional Redis-backed cache for materialized catalog pages.
// A nil PageCache is valid and caches nothing, so the pagination contract is
// identical with or without a cache host configured.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCacheFromEnv connects to CACHE_HOST:CACHE_PORT. It returns nil when
// no cache host is configured or the server is unreachable; catalog requests
// then always walk the cursor.
func NewPageCacheFromEnv() *PageCache {
	host := env.GetEnv("CACHE_HOST", "")
	if host == "" {
		return nil
	}
	port := env.GetEnv("CACHE_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnf("[Catalog] cache unreachable, pages will not be cached: %v", err)
		return nil
	}

	ttl := 60 * time.Second
	if raw := env.GetEnv("CATALOG_CACHE_TTL", ""); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	log.Infof("[Catalog] page cache enabled: addr=%s:%s ttl=%s", host, port, ttl)
	return &PageCache{client: client, ttl: ttl}
}

// Get loads a cached page into out and reports whether it was present.
func (c *PageCache) Get(ctx context.Context, key string, out any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return true
}

// Set stores a page; cache failures only cost the next request a re-fetch.
func (c *PageCache) Set(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		log.Warnf("[Catalog] cache write failed for %s: %v", key, err)
	}
}
