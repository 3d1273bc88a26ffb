package services

import (
	"context"
	"fmt"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache key prefixes for derived data invalidated by the sync job.
const (
	CacheKeyStandings = "standings:" // + "drivers" | "constructors"
	CacheKeyResults   = "results:"   // + canonical result key
	CacheKeyReference = "reference:" // + "drivers" | "teams" | "races"
)

const defaultCacheTTL = 5 * time.Minute

// CacheService is a layered read cache: an in-process TTL cache backed by an
// optional Redis instance. When Redis is not configured only the local layer
// is used, so a single-instance deployment still gets cheap reads.
type CacheService struct {
	redis *redis.Client
	local *gocache.Cache
}

// NewCacheService creates the cache. redisURL may be empty.
func NewCacheService(redisURL string) (*CacheService, error) {
	svc := &CacheService{
		local: gocache.New(defaultCacheTTL, 10*time.Minute),
	}

	if redisURL == "" {
		log.Println("⚠️  REDIS_URL not set, using in-process cache only")
		return svc, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	svc.redis = client
	log.Println("✅ Redis connection established")

	return svc, nil
}

// Get returns the cached JSON payload for key, or ("", false) on a miss.
func (s *CacheService) Get(ctx context.Context, key string) (string, bool) {
	if value, found := s.local.Get(key); found {
		return value.(string), true
	}

	if s.redis != nil {
		value, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			s.local.Set(key, value, gocache.DefaultExpiration)
			return value, true
		}
	}

	return "", false
}

// Set stores a JSON payload under key in both layers.
func (s *CacheService) Set(ctx context.Context, key, value string) {
	s.local.Set(key, value, gocache.DefaultExpiration)

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, value, defaultCacheTTL).Err(); err != nil {
			log.Printf("⚠️  [CACHE] Redis set failed for %s: %v", key, err)
		}
	}
}

// Invalidate drops the given keys from both layers. Called by the sync job
// after a successful commit so readers see the fresh documents.
func (s *CacheService) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		s.local.Delete(key)
	}

	if s.redis != nil && len(keys) > 0 {
		if err := s.redis.Del(ctx, keys...).Err(); err != nil {
			log.Printf("⚠️  [CACHE] Redis delete failed: %v", err)
		}
	}
}

// Close releases the Redis connection if one exists.
func (s *CacheService) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
