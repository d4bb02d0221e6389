package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *SQLStore) CreateContact(ctx context.Context, userID, name, contactContext string) (*Contact, error) {
	now := time.Now().UTC()
	contact := &Contact{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Context:   contactContext,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.exec(ctx, "INSERT INTO contacts (id, user_id, name, context, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		contact.ID, contact.UserID, contact.Name, contact.Context, contact.CreatedAt, contact.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateContact
		}
		return nil, fmt.Errorf("failed to insert contact: %w", err)
	}
	return contact, nil
}

func (s *SQLStore) GetContact(ctx context.Context, id, userID string) (*Contact, error) {
	var c Contact
	err := s.queryRow(ctx, "SELECT id, user_id, name, context, created_at, updated_at FROM contacts WHERE id = ? AND user_id = ?", id, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Context, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &c, nil
}

func (s *SQLStore) ListContacts(ctx context.Context, userID string) ([]Contact, error) {
	rows, err := s.query(ctx, "SELECT id, user_id, name, context, created_at, updated_at FROM contacts WHERE user_id = ? ORDER BY created_at ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	contacts := []Contact{}
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Context, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// UpdateContact renames or re-contextualises a contact. Message history keeps
// the contact name it was written under.
func (s *SQLStore) UpdateContact(ctx context.Context, id, userID, name, contactContext string) (*Contact, error) {
	res, err := s.exec(ctx, "UPDATE contacts SET name = ?, context = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		name, contactContext, time.Now().UTC(), id, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateContact
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetContact(ctx, id, userID)
}

// DeleteContact removes the contact; messages, cache entries and
// interpretations go with it through ON DELETE CASCADE.
func (s *SQLStore) DeleteContact(ctx context.Context, id, userID string) error {
	res, err := s.exec(ctx, "DELETE FROM contacts WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
