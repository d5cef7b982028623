package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultKeyPrefix namespaces response keys in a shared Redis.
const DefaultKeyPrefix = "tripserve:query:"

const scanBatch = 100

// RedisCache stores msgpack-encoded responses in Redis and lets Redis
// expire them. Every Redis error is logged and treated as a miss.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

var _ Cache = (*RedisCache)(nil)

// RedisOptions builds client options the way the service dials Redis.
func RedisOptions(addr, password string, db int) *redis.Options {
	return &redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  200 * time.Millisecond,
		WriteTimeout: 200 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// NewRedis wraps client. Empty prefix means DefaultKeyPrefix and ttl <= 0
// means DefaultTTL.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Ping tests the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (model.Response, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Debugf("Redis cache get failed: %v", err)
		}
		c.misses.Add(1)
		return model.Response{}, false
	}
	var r model.Response
	if err := msgpack.Unmarshal(data, &r); err != nil {
		log.Debugf("Dropping undecodable cache entry %q: %v", key, err)
		c.misses.Add(1)
		return model.Response{}, false
	}
	if r.Suggestions == nil {
		r.Suggestions = []model.Suggestion{}
	}
	c.hits.Add(1)
	return r, true
}

// Put implements Cache.
func (c *RedisCache) Put(ctx context.Context, key string, r model.Response) {
	data, err := msgpack.Marshal(r)
	if err != nil {
		log.Debugf("Redis cache encode failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		log.Debugf("Redis cache put failed: %v", err)
	}
}

func (c *RedisCache) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

// Clear deletes every key under the prefix.
func (c *RedisCache) Clear(ctx context.Context) {
	keys, err := c.keys(ctx)
	if err != nil {
		log.Debugf("Redis cache scan failed: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Debugf("Redis cache clear failed: %v", err)
		return
	}
	log.Debugf("Cleared %d cached responses", len(keys))
}

// Stats implements Cache. Entries is -1 when Redis can't be scanned.
func (c *RedisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n := -1
	if keys, err := c.keys(ctx); err == nil {
		n = len(keys)
	}
	return Stats{
		Backend: "redis",
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: n,
	}
}
