package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"thirdvoice.ai/third-voice/internal/store"
)

const keyPrefix = "thirdvoice:cache"

// RedisCache keeps entries as JSON values whose TTL matches ExpiresAt.
type RedisCache struct {
	rdb *goredis.Client
	now func() time.Time
}

// NewRedisCache connects to the server at url (redis://[:password@]host:port/db)
// and pings it.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{rdb: rdb, now: time.Now}, nil
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func redisKey(k Key) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, k.UserID, k.ContactID, k.MessageHash)
}

func (c *RedisCache) Get(ctx context.Context, key Key, now time.Time) (*store.CacheEntry, error) {
	raw, err := c.rdb.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry store.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	if !entry.ExpiresAt.After(now) {
		return nil, nil
	}
	return &entry, nil
}

func (c *RedisCache) Put(ctx context.Context, entry *store.CacheEntry) error {
	ttl := entry.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	key := Key{ContactID: entry.ContactID, MessageHash: entry.MessageHash, UserID: entry.UserID}
	if err := c.rdb.Set(ctx, redisKey(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Purge(ctx context.Context, contactID, userID string) (int64, error) {
	pattern := fmt.Sprintf("%s:%s:%s:*", keyPrefix, userID, contactID)

	var deleted int64
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.rdb.Del(ctx, iter.Val()).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis del: %w", err)
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan: %w", err)
	}
	return deleted, nil
}
