package cache

import (
	"context"
	"time"

	"thirdvoice.ai/third-voice/internal/store"
)

// Key addresses one cached completion.
type Key struct {
	ContactID   string
	MessageHash string
	UserID      string
}

// ResponseCache stores completions per (contact, message hash, user).
// Get returns (nil, nil) on a miss; an entry whose ExpiresAt is not after
// now is a miss.
type ResponseCache interface {
	Get(ctx context.Context, key Key, now time.Time) (*store.CacheEntry, error)
	Put(ctx context.Context, entry *store.CacheEntry) error
	Purge(ctx context.Context, contactID, userID string) (int64, error)
}

// TableCache keeps entries in the ai_response_cache table.
type TableCache struct {
	store *store.SQLStore
}

func NewTableCache(s *store.SQLStore) *TableCache {
	return &TableCache{store: s}
}

func (c *TableCache) Get(ctx context.Context, key Key, now time.Time) (*store.CacheEntry, error) {
	return c.store.GetCacheEntry(ctx, key.ContactID, key.MessageHash, key.UserID, now)
}

func (c *TableCache) Put(ctx context.Context, entry *store.CacheEntry) error {
	return c.store.PutCacheEntry(ctx, entry)
}

func (c *TableCache) Purge(ctx context.Context, contactID, userID string) (int64, error) {
	return c.store.DeleteCacheEntries(ctx, contactID, userID)
}
