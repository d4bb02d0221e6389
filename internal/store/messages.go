package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message methods
func (s *SQLStore) CreateMessage(ctx context.Context, msg *Message) error {
	msg.ID = uuid.NewString()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.CreatedAt = msg.CreatedAt.UTC()

	_, err := s.exec(ctx, `INSERT INTO messages
		(id, contact_id, contact_name, user_id, type, original, result, sentiment, emotional_state, healing_score, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ContactID, msg.ContactName, msg.UserID, msg.Type, msg.Original, nullableString(msg.Result),
		msg.Sentiment, msg.EmotionalState, msg.HealingScore, msg.Model, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute message insert: %w", err)
	}
	return nil
}

// ListMessages returns the newest limit messages of a contact in
// chronological order.
func (s *SQLStore) ListMessages(ctx context.Context, contactID, userID string, limit int) ([]Message, error) {
	query := `
        SELECT id, contact_id, contact_name, user_id, type, original, result, sentiment, emotional_state, healing_score, model, created_at
        FROM messages
        WHERE contact_id = ? AND user_id = ?
        ORDER BY created_at DESC
        LIMIT ?
    `
	rows, err := s.query(ctx, query, contactID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var msg Message
		var result sql.NullString
		if err := rows.Scan(&msg.ID, &msg.ContactID, &msg.ContactName, &msg.UserID, &msg.Type, &msg.Original, &result,
			&msg.Sentiment, &msg.EmotionalState, &msg.HealingScore, &msg.Model, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		msg.Result = stringPtr(result)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *SQLStore) CreateInterpretation(ctx context.Context, in *Interpretation) error {
	in.ID = uuid.NewString()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	in.CreatedAt = in.CreatedAt.UTC()

	_, err := s.exec(ctx, `INSERT INTO interpretations
		(id, contact_id, contact_name, user_id, original_message, interpretation, interpretation_score, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.ContactID, in.ContactName, in.UserID, in.OriginalMessage, in.Interpretation, in.InterpretationScore, in.Model, in.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute interpretation insert: %w", err)
	}
	return nil
}

func (s *SQLStore) CreateFeedback(ctx context.Context, fb *Feedback) error {
	fb.ID = uuid.NewString()
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}
	fb.CreatedAt = fb.CreatedAt.UTC()

	_, err := s.exec(ctx, "INSERT INTO feedback (id, user_id, rating, feedback_text, feature_context, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		fb.ID, fb.UserID, fb.Rating, nullableString(fb.FeedbackText), fb.FeatureContext, fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute feedback insert: %w", err)
	}
	return nil
}

func (s *SQLStore) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	var stats UserStats
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM contacts WHERE user_id = ?", userID).Scan(&stats.ContactCount); err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM messages WHERE user_id = ?", userID).Scan(&stats.MessageCount); err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	var avg sql.NullFloat64
	if err := s.queryRow(ctx, "SELECT AVG(healing_score) FROM messages WHERE user_id = ? AND healing_score > 0", userID).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to average healing scores: %w", err)
	}
	if avg.Valid {
		stats.AvgHealingScore = avg.Float64
	}
	return &stats, nil
}
