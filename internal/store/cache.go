package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetCacheEntry returns the entry for the key if it has not expired at now.
func (s *SQLStore) GetCacheEntry(ctx context.Context, contactID, messageHash, userID string, now time.Time) (*CacheEntry, error) {
	var e CacheEntry
	err := s.queryRow(ctx, `
        SELECT contact_id, message_hash, user_id, context, response, healing_score, model, sentiment, emotional_state, created_at, expires_at
        FROM ai_response_cache
        WHERE contact_id = ? AND message_hash = ? AND user_id = ? AND expires_at > ?`,
		contactID, messageHash, userID, now.UTC()).
		Scan(&e.ContactID, &e.MessageHash, &e.UserID, &e.Context, &e.Response, &e.HealingScore, &e.Model,
			&e.Sentiment, &e.EmotionalState, &e.CreatedAt, &e.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Miss
		}
		return nil, fmt.Errorf("failed to query cache entry: %w", err)
	}
	return &e, nil
}

// PutCacheEntry writes the entry, replacing any earlier row with the same key.
func (s *SQLStore) PutCacheEntry(ctx context.Context, e *CacheEntry) error {
	_, err := s.exec(ctx, `
        INSERT INTO ai_response_cache
            (contact_id, message_hash, user_id, context, response, healing_score, model, sentiment, emotional_state, created_at, expires_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (contact_id, message_hash, user_id) DO UPDATE SET
            context = excluded.context,
            response = excluded.response,
            healing_score = excluded.healing_score,
            model = excluded.model,
            sentiment = excluded.sentiment,
            emotional_state = excluded.emotional_state,
            created_at = excluded.created_at,
            expires_at = excluded.expires_at`,
		e.ContactID, e.MessageHash, e.UserID, e.Context, e.Response, e.HealingScore, e.Model,
		e.Sentiment, e.EmotionalState, e.CreatedAt.UTC(), e.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteCacheEntries(ctx context.Context, contactID, userID string) (int64, error) {
	res, err := s.exec(ctx, "DELETE FROM ai_response_cache WHERE contact_id = ? AND user_id = ?", contactID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *SQLStore) DeleteExpiredCacheEntries(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.exec(ctx, "DELETE FROM ai_response_cache WHERE expires_at <= ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
