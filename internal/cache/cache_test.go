package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thirdvoice.ai/third-voice/internal/store"
)

func newEntry(contactID, userID string, now time.Time, ttl time.Duration) *store.CacheEntry {
	return &store.CacheEntry{
		ContactID:      contactID,
		MessageHash:    "5d41402abc4b2a76b9719d911017c592",
		UserID:         userID,
		Context:        "family",
		Response:       "I hear you.",
		HealingScore:   7,
		Model:          "test-model",
		Sentiment:      "neutral",
		EmotionalState: "calm",
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}
}

func TestTableCache(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLStore(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	u, err := s.CreateUser(ctx, "a@example.com", "hash")
	require.NoError(t, err)
	contact, err := s.CreateContact(ctx, u.ID, "Sam", "family")
	require.NoError(t, err)

	c := NewTableCache(s)
	now := time.Now().UTC()
	entry := newEntry(contact.ID, u.ID, now, time.Hour)
	key := Key{ContactID: contact.ID, MessageHash: entry.MessageHash, UserID: u.ID}

	miss, err := c.Get(ctx, key, now)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, c.Put(ctx, entry))

	hit, err := c.Get(ctx, key, now)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "I hear you.", hit.Response)

	expired, err := c.Get(ctx, key, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, expired)

	n, err := c.Purge(ctx, contact.ID, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url)
	require.NoError(t, err)
	defer c.Close()

	contactID, userID := uuid.NewString(), uuid.NewString()
	now := time.Now().UTC()
	entry := newEntry(contactID, userID, now, time.Minute)
	key := Key{ContactID: contactID, MessageHash: entry.MessageHash, UserID: userID}

	require.NoError(t, c.Put(ctx, entry))

	hit, err := c.Get(ctx, key, now)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, entry.Response, hit.Response)

	expired, err := c.Get(ctx, key, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, expired)

	n, err := c.Purge(ctx, contactID, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	gone, err := c.Get(ctx, key, now)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRedisKey(t *testing.T) {
	k := Key{ContactID: "c1", MessageHash: "h1", UserID: "u1"}
	assert.Equal(t, "thirdvoice:cache:u1:c1:h1", redisKey(k))
}
